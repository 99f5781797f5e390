package domain

import (
	"bytes"
	"encoding/json"
)

// Order is a sales order as returned by the upstream ERP. Orders are never
// persisted locally; the pipeline re-fetches the full set on every run.
type Order struct {
	ID          string  `json:"id"`
	ContactID   string  `json:"contact_id"`
	CustomerRef string  `json:"customer_reference"`
	OrderDate   string  `json:"order_date"`
	TotalIncVat float64 `json:"total_inc_vat"`
	Branded     bool    `json:"branded"`
	CarrierHex  string  `json:"carrier_hex"`
	Channel     string  `json:"channel"`
	Delivery    bool    `json:"delivery"`
	Status      string  `json:"status"`
}

// OrdersPage is one page of the upstream orders listing. The upstream wraps
// the envelope either in a bare object or a single-element array; both shapes
// decode into the same page.
type OrdersPage struct {
	Results    []Order `json:"results"`
	TotalPages int     `json:"total_pages"`
}

func (p *OrdersPage) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var wrapped []json.RawMessage
		if err := json.Unmarshal(trimmed, &wrapped); err != nil {
			return err
		}
		if len(wrapped) == 0 {
			*p = OrdersPage{}
			return nil
		}
		trimmed = wrapped[0]
	}

	type page OrdersPage
	var out page
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return err
	}
	*p = OrdersPage(out)
	return nil
}

// TrackingEvent is a single carrier scan. Datetime uses the carrier's
// DD/MM/YYYY HH:mm:ss format.
type TrackingEvent struct {
	Description string `json:"description"`
	Branch      string `json:"branch"`
	Datetime    string `json:"datetime"`
}

// PODRecord is a proof-of-delivery attachment on a waybill.
type PODRecord struct {
	SignedBy string `json:"signed_by"`
	Datetime string `json:"datetime"`
}

// Waybill groups the tracking events and POD records for one consignment.
// The tracking endpoint returns either a single waybill object or an array
// of them.
type Waybill struct {
	WaybillNo  string          `json:"waybill_no"`
	Events     []TrackingEvent `json:"events"`
	PODDetails []PODRecord     `json:"podDetails"`
}

// TrackingResponse normalizes the one-or-many waybill shapes.
type TrackingResponse struct {
	Waybills []Waybill
}

func (r *TrackingResponse) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return json.Unmarshal(trimmed, &r.Waybills)
	}
	var single Waybill
	if err := json.Unmarshal(trimmed, &single); err != nil {
		return err
	}
	r.Waybills = []Waybill{single}
	return nil
}
