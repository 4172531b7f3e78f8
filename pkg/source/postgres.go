// SPDX-License-Identifier: Apache-2.0

package source

import (
	"context"
	"fmt"
	"math"
	"math/big"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/xataio/commons/internal/postgres"
	loglib "github.com/xataio/commons/pkg/log"
	"github.com/xataio/commons/pkg/num"
)

// PostgresSource reads the single column returned by a query. NULL values are
// gaps.
type PostgresSource struct {
	values
	querier postgres.Querier
	query   string
}

func NewPostgresSource(querier postgres.Querier, query string, opts ...Option) *PostgresSource {
	return &PostgresSource{
		values:  values{options: newOptions("postgres", opts)},
		querier: querier,
		query:   query,
	}
}

func (s *PostgresSource) Read(ctx context.Context, fn func(num.Number) error) error {
	rows, err := s.querier.Query(ctx, s.query)
	if err != nil {
		return fmt.Errorf("running source query: %w", err)
	}
	defer rows.Close()

	if fields := rows.FieldDescriptions(); len(fields) != 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidQuery, len(fields))
	}

	row := 0
	for rows.Next() {
		row++
		cols, err := rows.Values()
		if err != nil {
			return fmt.Errorf("row %d: %w", row, err)
		}
		fields := loglib.Fields{"row": row}
		v, err := fromPostgres(cols[0])
		if err != nil {
			err = s.invalid(err, fields)
		} else {
			err = s.emit(fn, v, fields)
		}
		if err != nil {
			return fmt.Errorf("row %d: %w", row, err)
		}
	}
	return rows.Err()
}

func (s *PostgresSource) Close() error {
	return s.querier.Close(context.Background())
}

// fromPostgres converts the values pgx decodes numeric columns into. Numeric
// values are converted exactly, text goes through num.Parse.
func fromPostgres(v any) (num.Number, error) {
	switch t := v.(type) {
	case pgtype.Numeric:
		return fromNumeric(t)
	case string:
		return num.Parse(t)
	case []byte:
		return num.Parse(string(t))
	default:
		return num.FromAny(v)
	}
}

func fromNumeric(n pgtype.Numeric) (num.Number, error) {
	switch {
	case !n.Valid:
		return num.None, nil
	case n.NaN:
		return num.None, fmt.Errorf("%w: NaN", num.ErrDomain)
	case n.InfinityModifier == pgtype.Infinity:
		return num.Float(math.Inf(1)), nil
	case n.InfinityModifier == pgtype.NegativeInfinity:
		return num.Float(math.Inf(-1)), nil
	case n.Int == nil:
		return num.Int(0), nil
	}

	if n.Exp >= 0 {
		scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n.Exp)), nil)
		return num.FromBigInt(new(big.Int).Mul(n.Int, scale))
	}
	denom := new(big.Int).Exp(big.NewInt(10), big.NewInt(-int64(n.Exp)), nil)
	return num.FromRat(new(big.Rat).SetFrac(n.Int, denom))
}
