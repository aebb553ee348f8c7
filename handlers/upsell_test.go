package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"grabbi-engine/models"

	"github.com/google/uuid"
)

func cartBody(lines ...map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{"lines": lines}
}

func cartLine(productID uuid.UUID, quantity int, unitPrice string) map[string]interface{} {
	return map[string]interface{}{
		"product_id": productID,
		"quantity":   quantity,
		"unit_price": unitPrice,
	}
}

func TestSelectUpsell_CategoryTrigger(t *testing.T) {
	db := freshDB()
	loc := seedLocation(db)
	router := setupUpsellRouter(db)

	mains := seedCategory(db, loc.BrandID, "Mains")
	drinks := seedCategory(db, loc.BrandID, "Drinks")
	burger := seedProduct(db, loc.BrandID, mains.ID, "Burger", "8.50")
	cola := seedProduct(db, loc.BrandID, drinks.ID, "Cola", "3.00")
	upsell := seedUpsell(db, loc, []uuid.UUID{cola.ID}, models.TriggerCondition{
		Type:        models.TriggerCategoryInCart,
		ReferenceID: mains.ID.String(),
	})

	w := httptest.NewRecorder()
	req := jsonRequest(http.MethodPost, "/api/upsells/select", map[string]interface{}{
		"location_id": loc.ID,
		"order_type":  "pickup",
		"cart":        cartBody(cartLine(burger.ID, 1, "8.50")),
	})
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := parseResponse(w)
	offer, ok := resp["offer"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected an offer, got %v", resp)
	}
	if id := offer["upsell"].(map[string]interface{})["id"]; id != upsell.ID.String() {
		t.Errorf("expected upsell %s, got %v", upsell.ID, id)
	}
	products := resp["products"].([]interface{})
	if len(products) != 1 {
		t.Fatalf("expected 1 offered product, got %d", len(products))
	}
	p := products[0].(map[string]interface{})
	if p["name"] != "Cola" {
		t.Errorf("expected Cola, got %v", p["name"])
	}
	assertDecimal(t, "price", p["price"], "3")
	assertDecimal(t, "offer price", p["offer_price"], "1.5")

	views, _, err := newTestEngine(db).store.UpsellCounters(req.Context(), upsell.ID)
	if err != nil {
		t.Fatalf("reading counters: %v", err)
	}
	if views != 1 {
		t.Errorf("expected 1 view, got %d", views)
	}
}

func TestSelectUpsell_NoOffer(t *testing.T) {
	db := freshDB()
	loc := seedLocation(db)
	router := setupUpsellRouter(db)

	cat := seedCategory(db, loc.BrandID, "Drinks")
	cola := seedProduct(db, loc.BrandID, cat.ID, "Cola", "3.00")
	seedUpsell(db, loc, []uuid.UUID{cola.ID}, models.TriggerCondition{
		Type:        models.TriggerCartValueOver,
		ReferenceID: "200",
	})

	w := httptest.NewRecorder()
	req := jsonRequest(http.MethodPost, "/api/upsells/select", map[string]interface{}{
		"location_id": loc.ID,
		"cart":        cartBody(cartLine(uuid.New(), 2, "100")),
	})
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := parseResponse(w)
	if resp["offer"] != nil {
		t.Errorf("expected no offer at exactly the threshold, got %v", resp["offer"])
	}
	if products, ok := resp["products"].([]interface{}); !ok || len(products) != 0 {
		t.Errorf("expected an empty products list, got %v", resp["products"])
	}
}

func TestSelectUpsell_SuppressesProductsInCart(t *testing.T) {
	db := freshDB()
	loc := seedLocation(db)
	router := setupUpsellRouter(db)

	cat := seedCategory(db, loc.BrandID, "Drinks")
	cola := seedProduct(db, loc.BrandID, cat.ID, "Cola", "3.00")
	seedUpsell(db, loc, []uuid.UUID{cola.ID}, models.TriggerCondition{
		Type:        models.TriggerProductInCart,
		ReferenceID: cola.ID.String(),
	})

	w := httptest.NewRecorder()
	req := jsonRequest(http.MethodPost, "/api/upsells/select", map[string]interface{}{
		"location_id": loc.ID,
		"cart":        cartBody(cartLine(cola.ID, 1, "3.00")),
	})
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if resp := parseResponse(w); resp["offer"] != nil {
		t.Errorf("expected the offer to be suppressed, got %v", resp["offer"])
	}
}

func TestSelectUpsell_BadRequest(t *testing.T) {
	db := freshDB()
	loc := seedLocation(db)
	router := setupUpsellRouter(db)

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"missing location", map[string]interface{}{"cart": cartBody()}},
		{"unknown order type", map[string]interface{}{"location_id": loc.ID, "order_type": "collection"}},
		{"zero quantity", map[string]interface{}{"location_id": loc.ID, "cart": cartBody(cartLine(uuid.New(), 0, "1"))}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, jsonRequest(http.MethodPost, "/api/upsells/select", tt.body))

			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestRecordConversionAndStats(t *testing.T) {
	db := freshDB()
	loc := seedLocation(db)
	router := setupUpsellRouter(db)
	upsell := seedUpsell(db, loc, nil)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, jsonRequest(http.MethodPost, "/api/upsells/"+upsell.ID.String()+"/conversions", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("conversion %d: expected 200, got %d: %s", i+1, w.Code, w.Body.String())
		}
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/upsells/"+upsell.ID.String()+"/stats", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := parseResponse(w)
	if resp["conversions"] != float64(2) {
		t.Errorf("expected 2 conversions, got %v", resp["conversions"])
	}
	if resp["views"] != float64(0) {
		t.Errorf("expected 0 views, got %v", resp["views"])
	}
}

func TestRecordConversion_UnknownUpsell(t *testing.T) {
	db := freshDB()
	router := setupUpsellRouter(db)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(http.MethodPost, "/api/upsells/"+uuid.New().String()+"/conversions", nil))

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", w.Code, w.Body.String())
	}
}

func TestGetStats_InvalidID(t *testing.T) {
	db := freshDB()
	router := setupUpsellRouter(db)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/upsells/abc/stats", nil))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}
