package repositories

import (
	"context"
	"fmt"

	"tokoshop/internal/models"

	sq "github.com/Masterminds/squirrel"
	"gorm.io/gorm"
)

// GORMReportRepository builds reporting SQL with squirrel and runs it through GORM,
// which rebinds the "?" placeholders for the active dialect.
type GORMReportRepository struct {
	db *gorm.DB
}

func NewGORMReportRepository(db *gorm.DB) *GORMReportRepository {
	return &GORMReportRepository{db: db}
}

// periodExpr renders created_at as a day or month bucket in the db's dialect.
func periodExpr(dialect, groupBy string) string {
	month := groupBy == "month"
	switch dialect {
	case "mysql":
		if month {
			return "DATE_FORMAT(created_at, '%Y-%m')"
		}
		return "DATE_FORMAT(created_at, '%Y-%m-%d')"
	case "postgres":
		if month {
			return "to_char(created_at, 'YYYY-MM')"
		}
		return "to_char(created_at, 'YYYY-MM-DD')"
	default:
		if month {
			return "strftime('%Y-%m', created_at)"
		}
		return "strftime('%Y-%m-%d', created_at)"
	}
}

// SalesQuery returns the SQL and arguments of a sales report.
func SalesQuery(dialect string, f models.SalesFilter) (string, []any, error) {
	period := periodExpr(dialect, f.GroupBy)
	b := sq.Select(
		period+" AS period",
		"COUNT(*) AS orders",
		"COALESCE(SUM(total), 0) AS revenue",
		"COALESCE(SUM(discount), 0) AS discounts",
	).From("orders")

	if !f.From.IsZero() {
		b = b.Where(sq.GtOrEq{"created_at": f.From})
	}
	if !f.To.IsZero() {
		b = b.Where(sq.Lt{"created_at": f.To})
	}
	if f.Status != "" {
		b = b.Where(sq.Eq{"status": f.Status})
	} else {
		b = b.Where(sq.NotEq{"status": models.OrderStatusCancelled})
	}

	return b.GroupBy(period).OrderBy("period").ToSql()
}

// Sales aggregates order counts, revenue and discounts per period.
func (r *GORMReportRepository) Sales(ctx context.Context, f models.SalesFilter) ([]models.SalesRow, error) {
	query, args, err := SalesQuery(r.db.Dialector.Name(), f)
	if err != nil {
		return nil, fmt.Errorf("failed to build sales query: %w", err)
	}

	rows := []models.SalesRow{}
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to run sales report: %w", err)
	}
	return rows, nil
}
