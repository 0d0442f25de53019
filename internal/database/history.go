package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CalculationHistory is one stored landed-cost calculation.
type CalculationHistory struct {
	ID                       uuid.UUID `json:"id"`
	Link                     string    `json:"link"`
	ItemName                 string    `json:"item_name"`
	DestinationAddress       string    `json:"destination_address"`
	DestinationZip           string    `json:"destination_zip"`
	ShippingMethod           string    `json:"shipping_method"`
	ItemPriceJPY             float64   `json:"item_price_jpy"`
	ItemPriceUSD             float64   `json:"item_price_usd"`
	DomesticShippingJPY      float64   `json:"domestic_shipping_jpy"`
	DomesticShippingUSD      float64   `json:"domestic_shipping_usd"`
	ServiceFeeJPY            float64   `json:"service_fee_jpy"`
	ServiceFeeUSD            float64   `json:"service_fee_usd"`
	InternationalShippingJPY float64   `json:"international_shipping_jpy"`
	InternationalShippingUSD float64   `json:"international_shipping_usd"`
	CustomsDutyUSD           float64   `json:"customs_duty_usd"`
	CustomsProcessingUSD     float64   `json:"customs_processing_usd"`
	TotalJPY                 float64   `json:"total_jpy"`
	TotalUSD                 float64   `json:"total_usd"`
	ExchangeRate             float64   `json:"exchange_rate"`
	CreatedAt                time.Time `json:"created_at"`
}

// Stats summarizes everything ever calculated.
type Stats struct {
	TotalCalculations   int64            `json:"total_calculations"`
	TotalSavedAddresses int64            `json:"total_saved_addresses"`
	TotalSpentUSD       float64          `json:"total_spent_usd"`
	ShippingMethods     map[string]int64 `json:"shipping_methods"`
}

type HistoryStore struct {
	db *DB
}

func NewHistoryStore(db *DB) *HistoryStore {
	return &HistoryStore{db: db}
}

func (s *HistoryStore) Insert(ctx context.Context, h *CalculationHistory) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO calculation_history (
			id, link, item_name, destination_address, destination_zip,
			shipping_method, item_price_jpy, item_price_usd,
			domestic_shipping_jpy, domestic_shipping_usd,
			service_fee_jpy, service_fee_usd,
			international_shipping_jpy, international_shipping_usd,
			customs_duty_usd, customs_processing_usd,
			total_jpy, total_usd, exchange_rate, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)`,
		h.ID, h.Link, h.ItemName, h.DestinationAddress, h.DestinationZip,
		h.ShippingMethod, h.ItemPriceJPY, h.ItemPriceUSD,
		h.DomesticShippingJPY, h.DomesticShippingUSD,
		h.ServiceFeeJPY, h.ServiceFeeUSD,
		h.InternationalShippingJPY, h.InternationalShippingUSD,
		h.CustomsDutyUSD, h.CustomsProcessingUSD,
		h.TotalJPY, h.TotalUSD, h.ExchangeRate, h.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert calculation history: %w", err)
	}
	return nil
}

const historyColumns = `
	id, link, item_name, destination_address, destination_zip,
	shipping_method, item_price_jpy, item_price_usd,
	domestic_shipping_jpy, domestic_shipping_usd,
	service_fee_jpy, service_fee_usd,
	international_shipping_jpy, international_shipping_usd,
	customs_duty_usd, customs_processing_usd,
	total_jpy, total_usd, exchange_rate, created_at`

func scanHistory(row pgx.Row) (*CalculationHistory, error) {
	var h CalculationHistory
	err := row.Scan(
		&h.ID, &h.Link, &h.ItemName, &h.DestinationAddress, &h.DestinationZip,
		&h.ShippingMethod, &h.ItemPriceJPY, &h.ItemPriceUSD,
		&h.DomesticShippingJPY, &h.DomesticShippingUSD,
		&h.ServiceFeeJPY, &h.ServiceFeeUSD,
		&h.InternationalShippingJPY, &h.InternationalShippingUSD,
		&h.CustomsDutyUSD, &h.CustomsProcessingUSD,
		&h.TotalJPY, &h.TotalUSD, &h.ExchangeRate, &h.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// List returns history entries newest first.
func (s *HistoryStore) List(ctx context.Context, limit, offset int) ([]CalculationHistory, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+historyColumns+`
		FROM calculation_history
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list calculation history: %w", err)
	}
	defer rows.Close()

	var history []CalculationHistory
	for rows.Next() {
		h, err := scanHistory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan calculation history: %w", err)
		}
		history = append(history, *h)
	}
	return history, rows.Err()
}

func (s *HistoryStore) Get(ctx context.Context, id uuid.UUID) (*CalculationHistory, error) {
	h, err := scanHistory(s.db.QueryRow(ctx, `
		SELECT `+historyColumns+`
		FROM calculation_history
		WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get calculation history: %w", err)
	}
	return h, nil
}

func (s *HistoryStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM calculation_history`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count calculation history: %w", err)
	}
	return count, nil
}

// Stats aggregates totals across history and saved addresses.
func (s *HistoryStore) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{ShippingMethods: make(map[string]int64)}

	err := s.db.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(total_usd), 0)
		FROM calculation_history`).Scan(&stats.TotalCalculations, &stats.TotalSpentUSD)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate calculation history: %w", err)
	}

	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM saved_addresses`).Scan(&stats.TotalSavedAddresses); err != nil {
		return nil, fmt.Errorf("failed to count saved addresses: %w", err)
	}

	rows, err := s.db.Query(ctx, `
		SELECT shipping_method, COUNT(*)
		FROM calculation_history
		GROUP BY shipping_method`)
	if err != nil {
		return nil, fmt.Errorf("failed to group shipping methods: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var method string
		var count int64
		if err := rows.Scan(&method, &count); err != nil {
			return nil, fmt.Errorf("failed to scan shipping method count: %w", err)
		}
		stats.ShippingMethods[method] = count
	}
	return stats, rows.Err()
}
