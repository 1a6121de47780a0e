// Package codegen generates batches of tracking codes and exports them as
// spreadsheets. Codes are unique within one run through their sequence
// number; nothing is checked against earlier runs.
package codegen

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"
	"time"
)

type Type string

const (
	TypeBox   Type = "BOX"
	TypeFiber Type = "FIBER"
	TypePack  Type = "PACK"
)

const (
	MaxQuantity   = 1_000_000
	ProgressEvery = 1000
	suffixLen     = 8
	alphabet      = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

var prefixes = map[Type]string{
	TypeBox:   "BX",
	TypeFiber: "FX",
	TypePack:  "PX",
}

var (
	ErrUnknownType     = errors.New("codegen: unknown code type")
	ErrInvalidQuantity = errors.New("codegen: quantity must be between 1 and 1,000,000")
)

// ParseType accepts the type name in any case.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := prefixes[t]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
	}
	return t, nil
}

func (t Type) Prefix() string { return prefixes[t] }

type Row struct {
	Serial    int
	Code      string
	Date      string
	Timestamp string
}

// Progress is called after every ProgressEvery codes with the running count.
type Progress func(done, total int)

type Generator struct {
	now  func() time.Time
	rand io.Reader
	loc  *time.Location
}

func NewGenerator(loc *time.Location) *Generator {
	if loc == nil {
		loc = time.UTC
	}
	return &Generator{now: time.Now, rand: rand.Reader, loc: loc}
}

// Generate builds qty rows. The Date and Timestamp columns are captured once at
// the start; the time component inside each code is captured per code. On
// error no rows are returned.
func (g *Generator) Generate(t Type, qty int, progress Progress) ([]Row, error) {
	prefix, ok := prefixes[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	if qty < 1 || qty > MaxQuantity {
		return nil, ErrInvalidQuantity
	}

	started := g.now().In(g.loc)
	date := started.Format("2/1/2006")
	stamp := started.Format("02/01/2006, 03:04:05 pm")

	rows := make([]Row, 0, qty)
	for i := 0; i < qty; i++ {
		suffix, err := g.suffix()
		if err != nil {
			return nil, fmt.Errorf("generate code %d: %w", i+1, err)
		}

		rows = append(rows, Row{
			Serial:    i + 1,
			Code:      buildCode(prefix, g.now().In(g.loc), i+1, suffix),
			Date:      date,
			Timestamp: stamp,
		})

		if progress != nil && (i+1)%ProgressEvery == 0 {
			progress(i+1, qty)
		}
	}
	return rows, nil
}

// buildCode concatenates prefix, YYYYMMDDHHMMSSmmm, a 6 digit sequence and
// the random suffix.
func buildCode(prefix string, at time.Time, seq int, suffix string) string {
	ms := at.Nanosecond() / int(time.Millisecond)
	return fmt.Sprintf("%s%s%03d%06d%s", prefix, at.Format("20060102150405"), ms, seq, suffix)
}

func (g *Generator) suffix() (string, error) {
	var b strings.Builder
	b.Grow(suffixLen)
	limit := big.NewInt(int64(len(alphabet)))
	for i := 0; i < suffixLen; i++ {
		n, err := rand.Int(g.rand, limit)
		if err != nil {
			return "", err
		}
		b.WriteByte(alphabet[n.Int64()])
	}
	return b.String(), nil
}
