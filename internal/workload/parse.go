package workload

import (
	"bufio"
	"io"
	"strings"

	"github.com/genc-murat/txstat/internal/core/models"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// ErrSyntax indicates a workload line that is not a valid operation.
var ErrSyntax = errors.New("workload: syntax error")

type Kind string

const (
	KindBegin       Kind = "begin"
	KindCharge      Kind = "charge"
	KindPoolAlloc   Kind = "pool_alloc"
	KindPoolFree    Kind = "pool_free"
	KindRegionAlloc Kind = "region_alloc"
	KindPin         Kind = "pin"
	KindUnpin       Kind = "unpin"
	KindTruncate    Kind = "truncate"
	KindEnd         Kind = "end"
)

// Op is one line of a workload script, e.g.
//
//	{"op":"charge","txn":"a","category":"story","delta":100}
type Op struct {
	Line     int
	Kind     Kind
	Txn      string
	Category models.Category
	Delta    int64
	Pool     string
	Size     int
	Align    int
}

// Parse reads a JSON-lines workload. Blank lines and lines starting with '#'
// are skipped.
func Parse(r io.Reader) ([]Op, error) {
	var ops []Op
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		op, err := parseOp(text)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		op.Line = line
		ops = append(ops, op)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "workload: read")
	}
	return ops, nil
}

func parseOp(text string) (Op, error) {
	if !gjson.Valid(text) {
		return Op{}, errors.Wrap(ErrSyntax, "invalid JSON")
	}
	fields := gjson.GetMany(text, "op", "txn", "category", "delta", "pool", "size", "align")

	op := Op{
		Kind:  Kind(fields[0].String()),
		Txn:   fields[1].String(),
		Delta: fields[3].Int(),
		Pool:  fields[4].String(),
		Size:  int(fields[5].Int()),
		Align: int(fields[6].Int()),
	}
	if op.Txn == "" {
		return Op{}, errors.Wrap(ErrSyntax, "missing txn")
	}

	needCategory := false
	switch op.Kind {
	case KindBegin, KindPin, KindUnpin, KindTruncate, KindEnd:
	case KindCharge:
		needCategory = true
		if !fields[3].Exists() {
			return Op{}, errors.Wrap(ErrSyntax, "charge without delta")
		}
	case KindPoolAlloc, KindPoolFree:
		needCategory = true
		if op.Pool == "" {
			return Op{}, errors.Wrapf(ErrSyntax, "%s without pool", op.Kind)
		}
	case KindRegionAlloc:
		needCategory = true
		if op.Size < 0 || op.Align < 0 {
			return Op{}, errors.Wrap(ErrSyntax, "negative size or alignment")
		}
	default:
		return Op{}, errors.Wrapf(ErrSyntax, "unknown op %q", op.Kind)
	}

	if needCategory {
		cat, err := models.ParseCategory(fields[2].String())
		if err != nil {
			return Op{}, errors.Wrap(ErrSyntax, err.Error())
		}
		op.Category = cat
	}
	return op, nil
}
