package serp

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"trippy/internal/trip"
)

// HotelQuery is one Google Hotels search. Only the first six fields are ever
// set by the conversation flow; the filters exist for direct API use.
type HotelQuery struct {
	Location     string
	CheckIn      string
	CheckOut     string
	Adults       int
	Children     int
	ChildrenAges string // comma-separated, e.g. "5,8,10"

	// Optional filters, zero values mean "not set".
	SortBy          int    // 3=lowest price, 8=highest rating, 13=most reviewed
	MinPrice        int
	MaxPrice        int
	HotelClass      string // comma-separated stars, e.g. "3,4,5"
	MinRating       int    // 7=3.5+, 8=4.0+, 9=4.5+
	VacationRentals bool
}

type hotelsResponse struct {
	Properties []hotelProperty `json:"properties"`
	Ads        []hotelProperty `json:"ads"`
}

type hotelProperty struct {
	Name           string   `json:"name"`
	Type           string   `json:"type"`
	Price          string   `json:"price"` // ads only
	RatePerNight   rateInfo `json:"rate_per_night"`
	TotalRate      rateInfo `json:"total_rate"`
	OverallRating  float64  `json:"overall_rating"`
	Reviews        int      `json:"reviews"`
	HotelClass     string   `json:"hotel_class"`
	ExtractedClass int      `json:"extracted_hotel_class"`
	GPSCoordinates struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"gps_coordinates"`
	Amenities []string `json:"amenities"`
	Images    []struct {
		Thumbnail     string `json:"thumbnail"`
		OriginalImage string `json:"original_image"`
	} `json:"images"`
	CheckInTime   string `json:"check_in_time"`
	CheckOutTime  string `json:"check_out_time"`
	PropertyToken string `json:"property_token"`
	Link          string `json:"link"`
	Description   string `json:"description"`
}

type rateInfo struct {
	Lowest string `json:"lowest"`
}

// SearchHotels runs one hotel search and normalizes properties and ads into a
// single list.
func (c *Client) SearchHotels(ctx context.Context, q HotelQuery) ([]trip.HotelOption, error) {
	params := url.Values{}
	params.Set("q", strings.TrimSpace(q.Location))
	params.Set("check_in_date", q.CheckIn)
	params.Set("check_out_date", q.CheckOut)
	params.Set("adults", strconv.Itoa(q.Adults))
	params.Set("children", strconv.Itoa(q.Children))
	params.Set("currency", "USD")
	params.Set("gl", "us")
	params.Set("hl", "en")
	if q.ChildrenAges != "" {
		params.Set("children_ages", q.ChildrenAges)
	}
	if q.SortBy != 0 {
		params.Set("sort_by", strconv.Itoa(q.SortBy))
	}
	if q.MinPrice != 0 {
		params.Set("min_price", strconv.Itoa(q.MinPrice))
	}
	if q.MaxPrice != 0 {
		params.Set("max_price", strconv.Itoa(q.MaxPrice))
	}
	if q.HotelClass != "" {
		params.Set("hotel_class", q.HotelClass)
	}
	if q.MinRating != 0 {
		params.Set("rating", strconv.Itoa(q.MinRating))
	}
	if q.VacationRentals {
		params.Set("vacation_rentals", "true")
	}

	var resp hotelsResponse
	if err := c.get(ctx, "google_hotels", params, &resp); err != nil {
		return nil, err
	}

	all := append(append([]hotelProperty{}, resp.Properties...), resp.Ads...)
	c.log.Info("hotel search completed",
		zap.String("location", q.Location),
		zap.Int("properties", len(resp.Properties)),
		zap.Int("ads", len(resp.Ads)))

	options := make([]trip.HotelOption, 0, len(all))
	for _, h := range all {
		if h.Name == "" {
			continue
		}
		options = append(options, normalizeHotel(h))
	}
	return options, nil
}

func normalizeHotel(h hotelProperty) trip.HotelOption {
	perNight := "N/A"
	switch {
	case h.RatePerNight.Lowest != "":
		perNight = h.RatePerNight.Lowest
	case h.Price != "":
		perNight = h.Price
	}

	total := "N/A"
	if h.TotalRate.Lowest != "" {
		total = h.TotalRate.Lowest
	}

	rating := "N/A"
	if h.OverallRating > 0 {
		rating = strconv.FormatFloat(h.OverallRating, 'f', -1, 64)
	}

	kind := h.Type
	if kind == "" {
		kind = "hotel"
	}

	images := make([]string, 0, 3)
	for _, img := range h.Images {
		if len(images) == 3 {
			break
		}
		if img.OriginalImage != "" {
			images = append(images, img.OriginalImage)
		} else if img.Thumbnail != "" {
			images = append(images, img.Thumbnail)
		}
	}

	description := "N/A"
	if h.Description != "" {
		description = h.Description
		if len(description) > 200 {
			description = description[:200] + "..."
		}
	}

	return trip.HotelOption{
		Name:          h.Name,
		Type:          kind,
		PricePerNight: perNight,
		TotalPrice:    total,
		Rating:        rating,
		Reviews:       h.Reviews,
		HotelClass:    formatHotelClass(h),
		Location:      formatGPS(h),
		Amenities:     formatAmenities(h.Amenities),
		Images:        images,
		CheckInTime:   orNA(h.CheckInTime),
		CheckOutTime:  orNA(h.CheckOutTime),
		PropertyToken: h.PropertyToken,
		Link:          h.Link,
		Description:   description,
	}
}

func formatHotelClass(h hotelProperty) string {
	if h.ExtractedClass > 0 {
		return fmt.Sprintf("%d-star", h.ExtractedClass)
	}
	if h.HotelClass != "" {
		return h.HotelClass
	}
	return "N/A"
}

func formatGPS(h hotelProperty) string {
	lat, lon := "N/A", "N/A"
	if h.GPSCoordinates.Latitude != 0 {
		lat = strconv.FormatFloat(h.GPSCoordinates.Latitude, 'f', -1, 64)
	}
	if h.GPSCoordinates.Longitude != 0 {
		lon = strconv.FormatFloat(h.GPSCoordinates.Longitude, 'f', -1, 64)
	}
	return fmt.Sprintf("Lat: %s, Lon: %s", lat, lon)
}

// formatAmenities keeps the first five amenities and summarizes the rest.
func formatAmenities(amenities []string) string {
	if len(amenities) == 0 {
		return "N/A"
	}
	shown := amenities
	if len(shown) > 5 {
		shown = shown[:5]
	}
	out := strings.Join(shown, ", ")
	if extra := len(amenities) - 5; extra > 0 {
		out += fmt.Sprintf(" (and %d more)", extra)
	}
	return out
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
