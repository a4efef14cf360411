package ecommerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/openship/backend/internal/domain/integration"
	"github.com/openship/backend/internal/infrastructure/adapter"
)

// DouyinModuleName is the identifier platforms use to select this module
const DouyinModuleName = "douyin"

// DouyinModule is the channel-namespace module that buys from Douyin stores
type DouyinModule struct {
	config DouyinConfig
	client *http.Client
	now    func() time.Time
}

// NewDouyinModule creates the module
func NewDouyinModule(config DouyinConfig, client *http.Client) *DouyinModule {
	return &DouyinModule{
		config: config,
		client: newClient(client),
		now:    time.Now,
	}
}

// Exports lists the capabilities the module implements
func (m *DouyinModule) Exports() adapter.Module {
	return adapter.Module{
		integration.CapabilityCreatePurchase: m.CreatePurchase,
		integration.CapabilitySearchProducts: m.SearchProducts,
		integration.CapabilityGetProduct:     m.GetProduct,
	}
}

// purchaseFields is the shared customer/shipping block sent with every purchase
type purchaseFields struct {
	OrderID        string `json:"orderId"`
	Email          string `json:"email"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	StreetAddress1 string `json:"streetAddress1"`
	StreetAddress2 string `json:"streetAddress2"`
	City           string `json:"city"`
	State          string `json:"state"`
	Zip            string `json:"zip"`
	Phone          string `json:"phone"`
	Note           string `json:"note"`
	CartItems      []struct {
		ProductID string `json:"productId"`
		VariantID string `json:"variantId"`
		Quantity  int    `json:"quantity"`
	} `json:"cartItems"`
}

// CreatePurchase places one order for all cart items of the channel.
// It returns {purchaseId, url} or {error}.
func (m *DouyinModule) CreatePurchase(ctx context.Context, req integration.AdapterRequest) (integration.AdapterResult, error) {
	var in purchaseFields
	if err := req.DecodeFields(&in); err != nil {
		return integration.ErrorResult(err.Error()), nil
	}
	if len(in.CartItems) == 0 {
		return integration.ErrorResult("No cart items to purchase"), nil
	}

	order := DouyinOrderCreateRequest{
		OutOrderNo: in.OrderID,
		Receiver: DouyinReceiver{
			Name:     strings.TrimSpace(in.FirstName + " " + in.LastName),
			Tel:      in.Phone,
			Province: in.State,
			City:     in.City,
			Town:     in.StreetAddress2,
			Detail:   in.StreetAddress1,
			Zip:      in.Zip,
			Email:    in.Email,
		},
		Remark: in.Note,
	}
	for _, item := range in.CartItems {
		if item.Quantity <= 0 {
			return integration.ErrorResult(fmt.Sprintf("invalid quantity for product %s", item.ProductID)), nil
		}
		order.Items = append(order.Items, DouyinOrderCreateItem{
			ProductID: item.ProductID,
			SkuID:     item.VariantID,
			Num:       item.Quantity,
		})
	}

	var resp DouyinOrderCreateResponse
	if err := m.call(ctx, req, "/order/create", order, &resp); err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return integration.ErrorResult(resp.Message), nil
	}
	if resp.Data == nil || resp.Data.OrderID == "" {
		return integration.ErrorResult("Douyin returned no order id"), nil
	}
	return integration.AdapterResult{
		"purchaseId": resp.Data.OrderID,
		"url":        resp.Data.PayURL,
	}, nil
}

// SearchProducts returns {products} matching searchEntry
func (m *DouyinModule) SearchProducts(ctx context.Context, req integration.AdapterRequest) (integration.AdapterResult, error) {
	size := req.IntField("take", 20)
	if size <= 0 || size > 100 {
		size = 20
	}
	params := map[string]any{
		"page": req.IntField("skip", 0) / size,
		"size": size,
	}
	if q := strings.TrimSpace(req.StringField("searchEntry")); q != "" {
		params["name"] = q
	}

	var resp DouyinProductListResponse
	if err := m.call(ctx, req, "/product/listV2", params, &resp); err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return integration.ErrorResult(resp.Message), nil
	}

	products := []Product{}
	if resp.Data != nil {
		for i := range resp.Data.Data {
			products = append(products, toProduct(&resp.Data.Data[i], ""))
		}
	}
	return integration.ResultFrom(map[string]any{"products": products})
}

// GetProduct returns {product} for productId, optionally narrowed to variantId
func (m *DouyinModule) GetProduct(ctx context.Context, req integration.AdapterRequest) (integration.AdapterResult, error) {
	productID, err := requireField(req, "productId")
	if err != nil {
		return integration.ErrorResult(err.Error()), nil
	}
	id, err := strconv.ParseInt(productID, 10, 64)
	if err != nil {
		return integration.ErrorResult(fmt.Sprintf("invalid product id %q", productID)), nil
	}

	var resp DouyinProductDetailResponse
	if err := m.call(ctx, req, "/product/detail", map[string]any{"product_id": id}, &resp); err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return integration.ErrorResult(resp.Message), nil
	}
	if resp.Data == nil || resp.Data.Product == nil {
		return integration.ErrorResult("Product not found"), nil
	}
	return integration.ResultFrom(map[string]any{
		"product": toProduct(resp.Data.Product, req.StringField("variantId")),
	})
}

// call signs and posts one open API method and decodes the reply into out
func (m *DouyinModule) call(ctx context.Context, req integration.AdapterRequest, method string, params any, out any) error {
	if err := m.config.Validate(); err != nil {
		return err
	}
	if req.AccessToken == "" {
		return ErrDouyinConfigMissingAccessToken
	}

	paramJSON, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("douyin: failed to marshal params: %w", err)
	}
	timestamp := strconv.FormatInt(m.now().Unix(), 10)
	version := "2"

	body, err := json.Marshal(map[string]any{
		"app_key":      m.config.AppKey,
		"access_token": req.AccessToken,
		"method":       method,
		"param_json":   string(paramJSON),
		"timestamp":    timestamp,
		"v":            version,
		"sign":         m.config.Sign(method, string(paramJSON), timestamp, version),
		"sign_method":  "hmac-sha256",
	})
	if err != nil {
		return fmt.Errorf("douyin: failed to marshal request: %w", err)
	}

	ctx, cancel := withDeadline(ctx)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, m.config.baseURL(req.Domain)+method, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("douyin: failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	raw, err := send(m.client, httpReq)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %v", ErrPlatformInvalidResponse, err)
	}
	return nil
}

func toProduct(p *DouyinProduct, variantID string) Product {
	out := Product{
		ProductID:        formatID(p.ProductID),
		Title:            p.Name,
		Image:            p.Img,
		Price:            fen(p.DiscountPrice),
		AvailableForSale: p.Status == 0,
		ProductLink:      "https://haohuo.jinritemai.com/views/product/detail?id=" + formatID(p.ProductID),
	}
	var stock int64
	for _, sku := range p.SkuList {
		stock += sku.StockNum
		if variantID != "" && formatID(sku.SkuID) == variantID {
			specs := make([]string, 0, len(sku.SpecDetail))
			for _, s := range sku.SpecDetail {
				specs = append(specs, s.ValueName)
			}
			out.VariantID = variantID
			out.Title = strings.TrimSpace(p.Name + " " + strings.Join(specs, " "))
			out.Price = fen(sku.Price)
			out.Inventory = sku.StockNum
			out.AvailableForSale = out.AvailableForSale && sku.StockNum > 0
			return out
		}
	}
	out.Inventory = stock
	return out
}

func fen(v int64) decimal.Decimal {
	return decimal.NewFromInt(v).Div(decimal.NewFromInt(centsPerYuan))
}
