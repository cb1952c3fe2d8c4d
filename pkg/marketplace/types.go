package marketplace

// Response types for the marketplace API. Payloads are decoded into these
// structs at the boundary; loosely shaped maps never reach the agents.

type VendorSummary struct {
	VendorID string `json:"vendor_id"`
	FullName string `json:"full_name"`
}

type vendorListResponse struct {
	Vendors []VendorSummary `json:"vendors"`
}

type VendorAddress struct {
	UUID                string `json:"uuid"`
	HouseNoBuildingName string `json:"house_no_building_name"`
	RoadNameAreaColony  string `json:"road_name_area_colony"`
	Country             string `json:"country"`
	State               string `json:"state"`
	City                string `json:"city"`
	Pincode             string `json:"pincode"`
	Latitude            string `json:"latitude"`
	Longitude           string `json:"longitude"`
}

type VendorService struct {
	UUID            string `json:"uuid"`
	ItemName        string `json:"item_name"`
	ServiceCategory string `json:"service_category"`
	ItemDescription string `json:"item_description"`
	ItemPrice       string `json:"item_price"`
}

type ImageRef struct {
	Thumbnail  string `json:"thumbnail"`
	Compressed string `json:"compressed"`
}

type VendorDetails struct {
	VendorID       string          `json:"vendor_id"`
	FullName       string          `json:"full_name"`
	UploadedImages []ImageRef      `json:"uploaded_images"`
	Addresses      []VendorAddress `json:"addresses"`
	Services       []VendorService `json:"services"`
}

type ActivityCategory struct {
	ActvCategory string `json:"actv_category"`
}

type Activity struct {
	ActivityID       string            `json:"activity_id"`
	UserID           string            `json:"user_id"`
	ActivityTitle    string            `json:"activity_title"`
	UploadedImages   []string          `json:"uploaded_images"`
	ActivityCategory *ActivityCategory `json:"activity_category"`
	CreatedBy        string            `json:"created_by"`
	InfiniteTime     bool              `json:"infinite_time"`
	StartDate        string            `json:"start_date"`
	StartTime        string            `json:"start_time"`
	EndDate          string            `json:"end_date"`
	EndTime          string            `json:"end_time"`
	Latitude         string            `json:"latitude"`
	Longitude        string            `json:"longitude"`
	Location         string            `json:"location"`
}

// Category returns the activity's category tag, empty when the feed omits it.
func (a Activity) Category() string {
	if a.ActivityCategory == nil {
		return ""
	}
	return a.ActivityCategory.ActvCategory
}

type CreateDealRequest struct {
	DealTitle        string     `json:"deal_title"`
	DealDescription  string     `json:"deal_description"`
	SelectService    string     `json:"select_service"`
	UploadedImages   []ImageRef `json:"uploaded_images"`
	StartDate        string     `json:"start_date"`
	EndDate          string     `json:"end_date"`
	StartTime        string     `json:"start_time"`
	EndTime          string     `json:"end_time"`
	StartNow         string     `json:"start_now"`
	ActualPrice      string     `json:"actual_price"`
	DealPrice        string     `json:"deal_price"`
	AvailableDeals   string     `json:"available_deals"`
	LocationHouseNo  string     `json:"location_house_no"`
	LocationRoadName string     `json:"location_road_name"`
	LocationCountry  string     `json:"location_country"`
	LocationState    string     `json:"location_state"`
	LocationCity     string     `json:"location_city"`
	LocationPincode  string     `json:"location_pincode"`
	VendorKYC        string     `json:"vendor_kyc"`
	Latitude         float64    `json:"latitude"`
	Longitude        float64    `json:"longitude"`
}

type DealData struct {
	DealUUID string `json:"deal_uuid"`
}

type CreateDealResponse struct {
	Message string   `json:"message"`
	Data    DealData `json:"data"`
}
