package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/maltedev/buyee-landed-cost/internal/database"
	"github.com/maltedev/buyee-landed-cost/internal/engine"
)

// Calculator is the engine surface the handlers need.
type Calculator interface {
	Calculate(ctx context.Context, req engine.Request) (*engine.Result, error)
	CalculateBatch(ctx context.Context, req engine.BatchRequest) (*engine.BatchResult, error)
}

type Handlers struct {
	engine    Calculator
	history   *database.HistoryStore
	addresses *database.AddressStore
	logger    *slog.Logger
}

// NewHandlers builds the handler set. history and addresses may be nil when
// no database is configured; the persistence endpoints then return 503.
func NewHandlers(calc Calculator, history *database.HistoryStore, addresses *database.AddressStore, logger *slog.Logger) *Handlers {
	return &Handlers{
		engine:    calc,
		history:   history,
		addresses: addresses,
		logger:    logger,
	}
}

// Routes mounts every endpoint on the given router.
func (h *Handlers) Routes(r chi.Router) {
	r.Post("/calculate", h.Calculate)
	r.Post("/calculate_batch", h.CalculateBatch)
	r.Get("/api/history", h.GetHistory)
	r.Get("/api/history/{historyID}", h.GetHistoryItem)
	r.Get("/api/addresses", h.GetAddresses)
	r.Post("/api/addresses", h.SaveAddress)
	r.Delete("/api/addresses/{addressID}", h.DeleteAddress)
	r.Get("/api/stats", h.GetStats)
}

// CalculateRequest is a single-link calculation. Manual fields cover listings
// the extractor cannot read.
type CalculateRequest struct {
	Link               string  `json:"link"`
	ShippingMethod     string  `json:"shipping_method"`
	DestinationAddress string  `json:"destination_address"`
	DestinationZip     string  `json:"destination_zip"`
	SaveToDB           *bool   `json:"save_to_db"`
	ManualPriceJPY     float64 `json:"manual_price_jpy"`
	ManualWeightKg     float64 `json:"manual_weight_kg"`
	ManualLengthCm     float64 `json:"manual_length_cm"`
	ManualWidthCm      float64 `json:"manual_width_cm"`
	ManualHeightCm     float64 `json:"manual_height_cm"`
}

// CalculateResponse is the cost breakdown for one link. JPY figures are whole
// units, USD figures two decimals; rounding happens only here at the edge.
type CalculateResponse struct {
	Success                  bool    `json:"success"`
	Link                     string  `json:"link"`
	ItemName                 string  `json:"item_name"`
	ShippingMethod           string  `json:"shipping_method"`
	ExchangeRate             float64 `json:"exchange_rate"`
	ItemPriceJPY             float64 `json:"item_price_jpy"`
	ItemPriceUSD             float64 `json:"item_price_usd"`
	DomesticShippingJPY      float64 `json:"domestic_shipping_jpy"`
	DomesticShippingUSD      float64 `json:"domestic_shipping_usd"`
	ServiceFeeJPY            float64 `json:"service_fee_jpy"`
	ServiceFeeUSD            float64 `json:"service_fee_usd"`
	InternationalShippingJPY float64 `json:"international_shipping_jpy"`
	InternationalShippingUSD float64 `json:"international_shipping_usd"`
	CustomsDutyUSD           float64 `json:"customs_duty_usd"`
	CustomsProcessingUSD     float64 `json:"customs_processing_usd"`
	TotalJPY                 float64 `json:"total_jpy"`
	TotalUSD                 float64 `json:"total_usd"`
	HistoryID                string  `json:"history_id,omitempty"`
	Note                     string  `json:"note,omitempty"`
	Error                    string  `json:"error,omitempty"`
}

// Attached whenever the price came from page extraction rather than a manual
// value.
const estimateNote = "extracted values are best-effort estimates"

func (h *Handlers) Calculate(w http.ResponseWriter, r *http.Request) {
	var req CalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.engine.Calculate(r.Context(), engine.Request{
		Link:               req.Link,
		ShippingMethod:     req.ShippingMethod,
		DestinationAddress: req.DestinationAddress,
		DestinationZip:     req.DestinationZip,
		ManualPriceJPY:     req.ManualPriceJPY,
		ManualWeightKg:     req.ManualWeightKg,
		ManualLengthCm:     req.ManualLengthCm,
		ManualWidthCm:      req.ManualWidthCm,
		ManualHeightCm:     req.ManualHeightCm,
	})
	if err != nil {
		if errors.Is(err, engine.ErrMissingLink) || errors.Is(err, engine.ErrMissingDestination) {
			h.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("calculation failed", "link", req.Link, "error", err)
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := h.toResponse(req.Link, result)
	if req.ManualPriceJPY == 0 {
		resp.Note = estimateNote
	}

	if (req.SaveToDB == nil || *req.SaveToDB) && h.history != nil {
		if id, err := h.saveHistory(r.Context(), req.Link, req.DestinationAddress, req.DestinationZip, result); err != nil {
			// Persistence is best-effort; the calculation still succeeds.
			h.logger.Error("failed to save calculation history", "error", err)
		} else {
			resp.HistoryID = id.String()
		}
	}

	h.respondJSON(w, http.StatusOK, resp)
}

// BatchRequest prices several links in one call.
type BatchRequest struct {
	Links              []string `json:"links"`
	ShippingMethod     string   `json:"shipping_method"`
	DestinationAddress string   `json:"destination_address"`
	DestinationZip     string   `json:"destination_zip"`
	Consolidated       bool     `json:"consolidated"`
}

type BatchResponse struct {
	Success                 bool                `json:"success"`
	Results                 []CalculateResponse `json:"results"`
	Consolidated            bool                `json:"consolidated"`
	ConsolidatedTotal       float64             `json:"consolidated_total,omitempty"`
	IndividualTotal         float64             `json:"individual_total,omitempty"`
	Savings                 float64             `json:"savings,omitempty"`
	ConsolidationFeeUSD     float64             `json:"consolidation_fee_usd,omitempty"`
	ConsolidatedShippingUSD float64             `json:"consolidated_shipping_usd,omitempty"`
	TotalAll                float64             `json:"total_all"`
	Count                   int                 `json:"count"`
	SuccessCount            int                 `json:"success_count"`
}

func (h *Handlers) CalculateBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	batch, err := h.engine.CalculateBatch(r.Context(), engine.BatchRequest{
		Links:              req.Links,
		ShippingMethod:     req.ShippingMethod,
		DestinationAddress: req.DestinationAddress,
		DestinationZip:     req.DestinationZip,
		Consolidated:       req.Consolidated,
	})
	if err != nil {
		if errors.Is(err, engine.ErrMissingDestination) || errors.Is(err, engine.ErrNoLinks) {
			h.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("batch calculation failed", "error", err)
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := BatchResponse{
		Success:      true,
		Results:      make([]CalculateResponse, 0, len(batch.Results)),
		TotalAll:     roundUSD(batch.TotalAllUSD),
		Count:        batch.Count,
		SuccessCount: batch.SuccessCount,
	}

	for _, lr := range batch.Results {
		if !lr.Success {
			resp.Results = append(resp.Results, CalculateResponse{Link: lr.Link, Error: lr.Error})
			continue
		}
		item := h.toResponse(lr.Link, lr.Result)
		item.Note = estimateNote
		if h.history != nil {
			if id, err := h.saveHistory(r.Context(), lr.Link, req.DestinationAddress, req.DestinationZip, lr.Result); err != nil {
				h.logger.Error("failed to save calculation history", "link", lr.Link, "error", err)
			} else {
				item.HistoryID = id.String()
			}
		}
		resp.Results = append(resp.Results, item)
	}

	if c := batch.Consolidation; c != nil {
		resp.Consolidated = true
		resp.ConsolidatedTotal = roundUSD(c.ConsolidatedTotalUSD)
		resp.IndividualTotal = roundUSD(c.IndividualTotalUSD)
		resp.Savings = roundUSD(c.SavingsUSD)
		resp.ConsolidationFeeUSD = roundUSD(c.ConsolidationFeeUSD)
		resp.ConsolidatedShippingUSD = roundUSD(c.ConsolidatedShippingUSD)
	}

	h.respondJSON(w, http.StatusOK, resp)
}

func (h *Handlers) GetHistory(w http.ResponseWriter, r *http.Request) {
	if !h.requireDB(w) {
		return
	}

	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	history, err := h.history.List(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error("failed to list history", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to list history")
		return
	}
	total, err := h.history.Count(r.Context())
	if err != nil {
		h.logger.Error("failed to count history", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to count history")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"history": history,
		"total":   total,
	})
}

func (h *Handlers) GetHistoryItem(w http.ResponseWriter, r *http.Request) {
	if !h.requireDB(w) {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "historyID"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid history ID")
		return
	}

	item, err := h.history.Get(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		h.respondError(w, http.StatusNotFound, "history item not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to get history item", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to get history item")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"item":    item,
	})
}

func (h *Handlers) GetAddresses(w http.ResponseWriter, r *http.Request) {
	if !h.requireDB(w) {
		return
	}

	addresses, err := h.addresses.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list addresses", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to list addresses")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"addresses": addresses,
	})
}

// SaveAddressRequest stores a destination for reuse.
type SaveAddressRequest struct {
	Address string `json:"address"`
	ZipCode string `json:"zip_code"`
	Name    string `json:"name"`
}

func (h *Handlers) SaveAddress(w http.ResponseWriter, r *http.Request) {
	if !h.requireDB(w) {
		return
	}

	var req SaveAddressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Address == "" || req.ZipCode == "" {
		h.respondError(w, http.StatusBadRequest, "address and ZIP code are required")
		return
	}

	saved, created, err := h.addresses.Save(r.Context(), req.Address, req.ZipCode, req.Name)
	if err != nil {
		h.logger.Error("failed to save address", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to save address")
		return
	}

	message := "Address updated"
	if created {
		message = "Address saved"
	}
	h.respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"address": saved,
		"message": message,
	})
}

func (h *Handlers) DeleteAddress(w http.ResponseWriter, r *http.Request) {
	if !h.requireDB(w) {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "addressID"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid address ID")
		return
	}

	if err := h.addresses.Delete(r.Context(), id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			h.respondError(w, http.StatusNotFound, "address not found")
			return
		}
		h.logger.Error("failed to delete address", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to delete address")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Address deleted",
	})
}

func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	if !h.requireDB(w) {
		return
	}

	stats, err := h.history.Stats(r.Context())
	if err != nil {
		h.logger.Error("failed to get stats", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to get stats")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"stats":   stats,
	})
}

// Helper methods

func (h *Handlers) toResponse(link string, result *engine.Result) CalculateResponse {
	cost := result.Cost
	return CalculateResponse{
		Success:                  true,
		Link:                     link,
		ItemName:                 result.Package.ItemName,
		ShippingMethod:           cost.ShippingMethod,
		ExchangeRate:             cost.ExchangeRate,
		ItemPriceJPY:             roundJPY(cost.ItemPriceJPY),
		ItemPriceUSD:             roundUSD(cost.ItemPriceUSD),
		DomesticShippingJPY:      roundJPY(cost.DomesticShippingJPY),
		DomesticShippingUSD:      roundUSD(cost.DomesticShippingUSD),
		ServiceFeeJPY:            roundJPY(cost.ServiceFeeJPY),
		ServiceFeeUSD:            roundUSD(cost.ServiceFeeUSD),
		InternationalShippingJPY: roundJPY(cost.InternationalShippingJPY),
		InternationalShippingUSD: roundUSD(cost.InternationalShippingUSD),
		CustomsDutyUSD:           roundUSD(cost.CustomsDutyUSD),
		CustomsProcessingUSD:     roundUSD(cost.CustomsProcessingUSD),
		TotalJPY:                 roundJPY(cost.TotalJPY),
		TotalUSD:                 roundUSD(cost.TotalUSD),
	}
}

func (h *Handlers) saveHistory(ctx context.Context, link, address, zip string, result *engine.Result) (uuid.UUID, error) {
	cost := result.Cost
	entry := &database.CalculationHistory{
		Link:                     link,
		ItemName:                 result.Package.ItemName,
		DestinationAddress:       address,
		DestinationZip:           zip,
		ShippingMethod:           cost.ShippingMethod,
		ItemPriceJPY:             cost.ItemPriceJPY,
		ItemPriceUSD:             cost.ItemPriceUSD,
		DomesticShippingJPY:      cost.DomesticShippingJPY,
		DomesticShippingUSD:      cost.DomesticShippingUSD,
		ServiceFeeJPY:            cost.ServiceFeeJPY,
		ServiceFeeUSD:            cost.ServiceFeeUSD,
		InternationalShippingJPY: cost.InternationalShippingJPY,
		InternationalShippingUSD: cost.InternationalShippingUSD,
		CustomsDutyUSD:           cost.CustomsDutyUSD,
		CustomsProcessingUSD:     cost.CustomsProcessingUSD,
		TotalJPY:                 cost.TotalJPY,
		TotalUSD:                 cost.TotalUSD,
		ExchangeRate:             cost.ExchangeRate,
	}
	if err := h.history.Insert(ctx, entry); err != nil {
		return uuid.Nil, err
	}
	return entry.ID, nil
}

func (h *Handlers) requireDB(w http.ResponseWriter) bool {
	if h.history == nil || h.addresses == nil {
		h.respondError(w, http.StatusServiceUnavailable, "database not configured")
		return false
	}
	return true
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}

func roundJPY(v float64) float64 {
	return math.Round(v)
}

func roundUSD(v float64) float64 {
	return math.Round(v*100) / 100
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
