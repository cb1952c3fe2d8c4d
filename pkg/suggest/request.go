package suggest

import (
	"time"

	"github.com/google/uuid"

	"github.com/dealsense/dealsense/pkg/model"
)

// Wire types for the suggestion API: POST /deals/suggest carries the event
// plus the vendor's inventory snapshot.

type EventData struct {
	EventID                uint        `json:"event_id,omitempty"`
	VendorID               string      `json:"vendor_id"`
	LocationUUID           string      `json:"location_uuid"`
	EventTriggerPoint      string      `json:"event_trigger_point"`
	EventDetailsText       model.JSONB `json:"event_details_text"`
	EventLocationLatitude  float64     `json:"event_location_latitude"`
	EventLocationLongitude float64     `json:"event_location_longitude"`
	EventTimestamp         time.Time   `json:"event_timestamp"`
}

type InventoryItemData struct {
	SKU            string  `json:"sku"`
	ProductName    string  `json:"product_name"`
	Description    string  `json:"description"`
	Price          float64 `json:"price"`
	QuantityOnHand int     `json:"quantity_on_hand"`
	Category       string  `json:"category"`
	Supplier       string  `json:"supplier"`
}

type Request struct {
	EventData      EventData           `json:"event_data"`
	InventoryItems []InventoryItemData `json:"inventory_items"`
}

func NewRequest(event *model.Event, inventory []model.InventoryItem) Request {
	items := make([]InventoryItemData, 0, len(inventory))
	for _, it := range inventory {
		items = append(items, InventoryItemData{
			SKU:            it.SKU,
			ProductName:    it.ProductName,
			Description:    it.Description,
			Price:          it.Price,
			QuantityOnHand: it.QuantityOnHand,
			Category:       it.Category,
			Supplier:       it.Supplier,
		})
	}
	return Request{
		EventData: EventData{
			EventID:                event.ID,
			VendorID:               event.VendorID,
			LocationUUID:           event.LocationUUID.String(),
			EventTriggerPoint:      event.EventTriggerPoint,
			EventDetailsText:       event.EventDetailsText,
			EventLocationLatitude:  event.EventLocationLatitude,
			EventLocationLongitude: event.EventLocationLongitude,
			EventTimestamp:         event.EventTimestamp,
		},
		InventoryItems: items,
	}
}

// Event rebuilds the event the request describes so the generator can work
// from the same shape in both the in-process and API variants.
func (r Request) Event() *model.Event {
	locationUUID, err := uuid.Parse(r.EventData.LocationUUID)
	if err != nil {
		locationUUID = uuid.Nil
	}
	return &model.Event{
		ID:                     r.EventData.EventID,
		VendorID:               r.EventData.VendorID,
		LocationUUID:           locationUUID,
		EventTriggerPoint:      r.EventData.EventTriggerPoint,
		EventDetailsText:       r.EventData.EventDetailsText,
		EventLocationLatitude:  r.EventData.EventLocationLatitude,
		EventLocationLongitude: r.EventData.EventLocationLongitude,
		EventTimestamp:         r.EventData.EventTimestamp,
	}
}

// Inventory converts the wire items back to model rows.
func (r Request) Inventory() []model.InventoryItem {
	items := make([]model.InventoryItem, 0, len(r.InventoryItems))
	for _, it := range r.InventoryItems {
		items = append(items, model.InventoryItem{
			VendorID:       r.EventData.VendorID,
			SKU:            it.SKU,
			ProductName:    it.ProductName,
			Description:    it.Description,
			Price:          it.Price,
			QuantityOnHand: it.QuantityOnHand,
			Category:       it.Category,
			Supplier:       it.Supplier,
		})
	}
	return items
}
