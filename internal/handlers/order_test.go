package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap/zaptest"

	"github.com/abnahid/zenvira-backend/internal/middleware"
	"github.com/abnahid/zenvira-backend/internal/models"
	"github.com/abnahid/zenvira-backend/internal/orders"
	"github.com/abnahid/zenvira-backend/internal/orders/orderstest"
)

const testSecret = "test-secret"

func signToken(t *testing.T, userID primitive.ObjectID, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": userID.Hex(),
		"role":   role,
	})
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return "Bearer " + signed
}

func newOrderRouter(t *testing.T, store *orderstest.Store) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := orders.NewService(store, store, store, store, zaptest.NewLogger(t))
	h := NewOrderHandler(svc, zaptest.NewLogger(t))

	r := gin.New()
	r.POST("/orders", middleware.CustomerAuth(testSecret), h.Create)
	r.GET("/orders", middleware.CustomerAuth(testSecret), h.ListMine)
	r.PATCH("/orders/:id/status", middleware.CustomerAuth(testSecret), h.CancelMine)
	r.GET("/seller/orders", middleware.SellerAuth(testSecret), h.SellerList)
	r.GET("/admin/api/orders", middleware.AdminAuth(testSecret), h.AdminList)
	r.PATCH("/admin/api/orders/:id/status", middleware.AdminAuth(testSecret), h.AdminUpdateStatus)
	r.PATCH("/admin/api/orders/:id/payment-status", middleware.AdminAuth(testSecret), h.AdminUpdatePaymentStatus)
	r.DELETE("/admin/api/orders/:id", middleware.AdminAuth(testSecret), h.AdminDelete)
	return r
}

func orderBody(medicineID string, quantity int) []byte {
	body, _ := json.Marshal(gin.H{
		"shippingName":  "Ayesha Rahman",
		"shippingPhone": "+8801711000000",
		"shippingEmail": "ayesha@example.com",
		"address":       "12 Green Road, Dhaka",
		"paymentMethod": "cod",
		"items":         []gin.H{{"medicineId": medicineID, "quantity": quantity}},
	})
	return body
}

func doJSON(r *gin.Engine, method, path, token string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateOrderEndToEnd(t *testing.T) {
	store := orderstest.New()
	productID := store.AddProduct(models.Product{Name: "Napa 500mg", Price: 5.00, Stock: 10})
	r := newOrderRouter(t, store)
	customer := primitive.NewObjectID()

	w := doJSON(r, "POST", "/orders", signToken(t, customer, middleware.RoleCustomer), orderBody(productID.Hex(), 3))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var order models.Order
	if err := json.Unmarshal(w.Body.Bytes(), &order); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if order.Total != 15.00 || order.Status != models.OrderPlaced {
		t.Fatalf("unexpected order: total=%v status=%s", order.Total, order.Status)
	}
	if store.StockOf(productID) != 7 {
		t.Fatalf("expected stock 7, got %d", store.StockOf(productID))
	}
}

func TestCreateOrderRequiresAuth(t *testing.T) {
	store := orderstest.New()
	productID := store.AddProduct(models.Product{Name: "Napa", Price: 5, Stock: 10})
	r := newOrderRouter(t, store)

	w := doJSON(r, "POST", "/orders", "", orderBody(productID.Hex(), 1))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestCreateOrderInsufficientStockDetail(t *testing.T) {
	store := orderstest.New()
	productID := store.AddProduct(models.Product{Name: "Scarce", Price: 5, Stock: 2})
	r := newOrderRouter(t, store)

	w := doJSON(r, "POST", "/orders", signToken(t, primitive.NewObjectID(), middleware.RoleCustomer), orderBody(productID.Hex(), 5))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}

	var resp struct {
		Error     string `json:"error"`
		ProductID string `json:"productId"`
		Available int    `json:"available"`
		Requested int    `json:"requested"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ProductID != productID.Hex() || resp.Available != 2 || resp.Requested != 5 {
		t.Fatalf("unexpected detail: %+v", resp)
	}
	if store.StockOf(productID) != 2 {
		t.Fatalf("rejected create changed stock: %d", store.StockOf(productID))
	}
}

func TestCreateOrderRejectsUnsupportedPaymentMethod(t *testing.T) {
	store := orderstest.New()
	productID := store.AddProduct(models.Product{Name: "Napa", Price: 5, Stock: 10})
	r := newOrderRouter(t, store)

	body, _ := json.Marshal(gin.H{
		"shippingName":  "Ayesha Rahman",
		"shippingPhone": "+8801711000000",
		"shippingEmail": "ayesha@example.com",
		"address":       "12 Green Road, Dhaka",
		"paymentMethod": "card",
		"items":         []gin.H{{"medicineId": productID.Hex(), "quantity": 1}},
	})
	w := doJSON(r, "POST", "/orders", signToken(t, primitive.NewObjectID(), middleware.RoleCustomer), body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestCustomerCancelOwnOrder(t *testing.T) {
	store := orderstest.New()
	productID := store.AddProduct(models.Product{Name: "Napa", Price: 5, Stock: 10})
	r := newOrderRouter(t, store)
	customer := primitive.NewObjectID()

	w := doJSON(r, "POST", "/orders", signToken(t, customer, middleware.RoleCustomer), orderBody(productID.Hex(), 3))
	if w.Code != http.StatusCreated {
		t.Fatalf("create failed: %d", w.Code)
	}
	var order models.Order
	if err := json.Unmarshal(w.Body.Bytes(), &order); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	cancelBody, _ := json.Marshal(gin.H{"status": "cancelled"})
	w = doJSON(r, "PATCH", "/orders/"+order.ID.Hex()+"/status", signToken(t, customer, middleware.RoleCustomer), cancelBody)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if store.StockOf(productID) != 10 {
		t.Fatalf("expected stock restored to 10, got %d", store.StockOf(productID))
	}
}

func TestCustomerCannotTouchForeignOrderOrOtherStatuses(t *testing.T) {
	store := orderstest.New()
	productID := store.AddProduct(models.Product{Name: "Napa", Price: 5, Stock: 10})
	r := newOrderRouter(t, store)
	owner := primitive.NewObjectID()

	w := doJSON(r, "POST", "/orders", signToken(t, owner, middleware.RoleCustomer), orderBody(productID.Hex(), 1))
	var order models.Order
	if err := json.Unmarshal(w.Body.Bytes(), &order); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	cancelBody, _ := json.Marshal(gin.H{"status": "cancelled"})
	w = doJSON(r, "PATCH", "/orders/"+order.ID.Hex()+"/status", signToken(t, primitive.NewObjectID(), middleware.RoleCustomer), cancelBody)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for foreign order, got %d", w.Code)
	}

	shipBody, _ := json.Marshal(gin.H{"status": "shipped"})
	w = doJSON(r, "PATCH", "/orders/"+order.ID.Hex()+"/status", signToken(t, owner, middleware.RoleCustomer), shipBody)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-cancel status, got %d", w.Code)
	}
}

func TestAdminStatusPaymentAndDelete(t *testing.T) {
	store := orderstest.New()
	productID := store.AddProduct(models.Product{Name: "Napa", Price: 5, Stock: 10})
	r := newOrderRouter(t, store)
	admin := signToken(t, primitive.NewObjectID(), middleware.RoleAdmin)

	w := doJSON(r, "POST", "/orders", signToken(t, primitive.NewObjectID(), middleware.RoleCustomer), orderBody(productID.Hex(), 2))
	var order models.Order
	if err := json.Unmarshal(w.Body.Bytes(), &order); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	statusBody, _ := json.Marshal(gin.H{"status": "confirmed"})
	w = doJSON(r, "PATCH", "/admin/api/orders/"+order.ID.Hex()+"/status", admin, statusBody)
	if w.Code != http.StatusOK {
		t.Fatalf("status update failed: %d %s", w.Code, w.Body.String())
	}
	if store.StockOf(productID) != 8 {
		t.Fatalf("confirm touched stock: %d", store.StockOf(productID))
	}

	payBody, _ := json.Marshal(gin.H{"paymentStatus": "paid"})
	w = doJSON(r, "PATCH", "/admin/api/orders/"+order.ID.Hex()+"/payment-status", admin, payBody)
	if w.Code != http.StatusOK {
		t.Fatalf("payment status update failed: %d %s", w.Code, w.Body.String())
	}

	w = doJSON(r, "DELETE", "/admin/api/orders/"+order.ID.Hex(), admin, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete failed: %d %s", w.Code, w.Body.String())
	}
	if store.StockOf(productID) != 10 {
		t.Fatalf("expected stock restored to 10 after delete, got %d", store.StockOf(productID))
	}

	w = doJSON(r, "DELETE", "/admin/api/orders/"+order.ID.Hex(), admin, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", w.Code)
	}
}

func TestSellerOrdersViewDerivedTotals(t *testing.T) {
	store := orderstest.New()
	sellerA := primitive.NewObjectID()
	sellerB := primitive.NewObjectID()
	pa := store.AddProduct(models.Product{Name: "Paracetamol", Price: 10, Stock: 50, SellerID: sellerA})
	pb := store.AddProduct(models.Product{Name: "Cough Syrup", Price: 20, Stock: 50, SellerID: sellerB})
	r := newOrderRouter(t, store)

	body, _ := json.Marshal(gin.H{
		"shippingName":  "Ayesha Rahman",
		"shippingPhone": "+8801711000000",
		"shippingEmail": "ayesha@example.com",
		"address":       "12 Green Road, Dhaka",
		"paymentMethod": "cod",
		"items": []gin.H{
			{"medicineId": pa.Hex(), "quantity": 2},
			{"medicineId": pb.Hex(), "quantity": 1},
		},
	})
	w := doJSON(r, "POST", "/orders", signToken(t, primitive.NewObjectID(), middleware.RoleCustomer), body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create failed: %d %s", w.Code, w.Body.String())
	}

	w = doJSON(r, "GET", "/seller/orders", signToken(t, sellerA, middleware.RoleSeller), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("seller list failed: %d %s", w.Code, w.Body.String())
	}

	var resp struct {
		Orders []orders.SellerOrder `json:"orders"`
		Total  int64                `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Total != 1 || len(resp.Orders) != 1 {
		t.Fatalf("expected one order for seller A, got %s", w.Body.String())
	}
	view := resp.Orders[0]
	if view.SellerSubtotal != 20 || view.SellerItemCount != 2 || len(view.Items) != 1 {
		t.Fatalf("unexpected projection: %+v", view)
	}
}

func TestAdminListFilters(t *testing.T) {
	store := orderstest.New()
	productID := store.AddProduct(models.Product{Name: "Napa", Price: 5, Stock: 50})
	r := newOrderRouter(t, store)
	admin := signToken(t, primitive.NewObjectID(), middleware.RoleAdmin)
	customer := primitive.NewObjectID()

	doJSON(r, "POST", "/orders", signToken(t, customer, middleware.RoleCustomer), orderBody(productID.Hex(), 1))
	doJSON(r, "POST", "/orders", signToken(t, primitive.NewObjectID(), middleware.RoleCustomer), orderBody(productID.Hex(), 1))

	w := doJSON(r, "GET", fmt.Sprintf("/admin/api/orders?customerId=%s", customer.Hex()), admin, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("admin list failed: %d %s", w.Code, w.Body.String())
	}

	var resp struct {
		Orders []models.Order `json:"orders"`
		Total  int64          `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Total != 1 || resp.Orders[0].CustomerID != customer {
		t.Fatalf("customer filter failed: %s", w.Body.String())
	}

	w = doJSON(r, "GET", "/admin/api/orders?status=bogus", admin, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad status filter, got %d", w.Code)
	}
}
