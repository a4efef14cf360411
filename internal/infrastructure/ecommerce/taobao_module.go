package ecommerce

import (
	"context"
	"crypto/hmac"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/openship/backend/internal/domain/integration"
	"github.com/openship/backend/internal/infrastructure/adapter"
)

// TaobaoModuleName is the identifier platforms use to select this module
const TaobaoModuleName = "taobao"

// TaobaoSignatureHeader carries the message push signature
const TaobaoSignatureHeader = "X-Taobao-Signature"

const taobaoTimeLayout = "2006-01-02 15:04:05"

// Taobao timestamps are Beijing time
var taobaoLocation = time.FixedZone("CST", 8*60*60)

const taobaoTradeFields = "tid,status,buyer_nick,created,payment,total_fee,post_fee," +
	"receiver_name,receiver_state,receiver_city,receiver_district,receiver_address,receiver_zip,receiver_mobile,receiver_phone," +
	"buyer_message,seller_memo,num_iid,title,price,num,pic_path," +
	"orders.oid,orders.num_iid,orders.sku_id,orders.title,orders.sku_properties_name,orders.price,orders.num,orders.pic_path"

var (
	taobaoCancelTopics = map[string]bool{
		"taobao_trade_TradeClose":                     true,
		"taobao_trade_TradeCloseAndModifyDetailOrder": true,
	}
	taobaoCreateTopics = map[string]bool{
		"taobao_trade_TradeCreate":   true,
		"taobao_trade_TradeBuyerPay": true,
	}
)

// TaobaoModule is the shop-namespace module for Taobao/Tmall stores
type TaobaoModule struct {
	config TaobaoConfig
	client *http.Client
	now    func() time.Time
}

// NewTaobaoModule creates the module. Missing app credentials surface
// as errors on each call, not at construction.
func NewTaobaoModule(config TaobaoConfig, client *http.Client) *TaobaoModule {
	return &TaobaoModule{
		config: config,
		client: newClient(client),
		now:    time.Now,
	}
}

// Exports lists the capabilities the module implements
func (m *TaobaoModule) Exports() adapter.Module {
	return adapter.Module{
		integration.CapabilitySearchOrders:       m.SearchOrders,
		integration.CapabilityGetProduct:         m.GetProduct,
		integration.CapabilityAddTracking:        m.AddTracking,
		integration.CapabilityOrderLink:          m.OrderLink,
		integration.CapabilityCancelOrderWebhook: m.CancelOrderWebhook,
		integration.CapabilityCreateOrderWebhook: m.CreateOrderWebhook,
	}
}

// SearchOrders lists sold trades. searchEntry filters by buyer nick;
// take/skip page the list and an "after" cursor resumes after a page.
func (m *TaobaoModule) SearchOrders(ctx context.Context, req integration.AdapterRequest) (integration.AdapterResult, error) {
	take := req.IntField("take", 10)
	if take <= 0 {
		take = 10
	}
	page := req.IntField("skip", 0)/take + 1
	if after := req.StringField("after"); after != "" {
		if n, err := strconv.Atoi(after); err == nil && n > 0 {
			page = n + 1
		}
	}

	params := map[string]string{
		"method":       "taobao.trades.sold.get",
		"fields":       taobaoTradeFields,
		"page_no":      strconv.Itoa(page),
		"page_size":    strconv.Itoa(take),
		"use_has_next": "true",
	}
	if nick := strings.TrimSpace(req.StringField("searchEntry")); nick != "" {
		params["buyer_nick"] = nick
	}

	var resp TaobaoTradesGetResponse
	if err := m.call(ctx, req, params, &resp); err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}

	result := integration.PlatformOrderPage{Orders: []integration.PlatformOrder{}}
	if sold := resp.TradesSoldGetResponse; sold != nil {
		result.HasNextPage = sold.HasNext
		if sold.Trades != nil {
			cursor := strconv.Itoa(page)
			for i := range sold.Trades.Trade {
				order := m.toPlatformOrder(&sold.Trades.Trade[i])
				order.Cursor = cursor
				result.Orders = append(result.Orders, order)
			}
		}
	}
	return integration.ResultFrom(result)
}

// GetProduct returns {product} for productId, optionally narrowed to variantId
func (m *TaobaoModule) GetProduct(ctx context.Context, req integration.AdapterRequest) (integration.AdapterResult, error) {
	productID, err := requireField(req, "productId")
	if err != nil {
		return integration.ErrorResult(err.Error()), nil
	}
	if _, err := strconv.ParseInt(productID, 10, 64); err != nil {
		return integration.ErrorResult(fmt.Sprintf("invalid product id %q", productID)), nil
	}

	params := map[string]string{
		"method":  "taobao.item.seller.get",
		"num_iid": productID,
		"fields":  "num_iid,title,num,price,pic_url,detail_url,approve_status,sku",
	}
	var resp TaobaoItemSellerGetResponse
	if err := m.call(ctx, req, params, &resp); err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	if resp.ItemSellerGetResponse == nil || resp.ItemSellerGetResponse.Item == nil {
		return integration.ErrorResult("Product not found"), nil
	}

	item := resp.ItemSellerGetResponse.Item
	product := Product{
		ProductID:        formatID(item.NumIid),
		Title:            item.Title,
		Image:            item.PicURL,
		Price:            ParseDecimal(item.Price),
		AvailableForSale: item.ApproveStatus == "onsale",
		Inventory:        item.Num,
		ProductLink:      item.DetailURL,
	}
	if variantID := req.StringField("variantId"); variantID != "" && item.Skus != nil {
		for _, sku := range item.Skus.Sku {
			if formatID(sku.SkuID) == variantID {
				product.VariantID = variantID
				product.Title = strings.TrimSpace(item.Title + " " + sku.PropertiesName)
				product.Price = ParseDecimal(sku.Price)
				product.Inventory = sku.Quantity
			}
		}
	}
	return integration.ResultFrom(map[string]any{"product": product})
}

// AddTracking marks a trade as shipped with an offline carrier
func (m *TaobaoModule) AddTracking(ctx context.Context, req integration.AdapterRequest) (integration.AdapterResult, error) {
	orderID, err := requireField(req, "orderId")
	if err != nil {
		return integration.ErrorResult(err.Error()), nil
	}
	number, err := requireField(req, "trackingNumber")
	if err != nil {
		return integration.ErrorResult(err.Error()), nil
	}

	params := map[string]string{
		"method":       "taobao.logistics.offline.send",
		"tid":          orderID,
		"out_sid":      number,
		"company_code": mapShippingCompanyToTaobaoCode(req.StringField("trackingCompany")),
	}
	var resp TaobaoLogisticsSendResponse
	if err := m.call(ctx, req, params, &resp); err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	if r := resp.LogisticsOfflineSendResponse; r != nil && r.Shipping != nil && !r.Shipping.IsSuccess {
		return integration.ErrorResult("Taobao rejected the shipment"), nil
	}
	return integration.AdapterResult{"success": true}, nil
}

// OrderLink returns the seller-side trade detail URL
func (m *TaobaoModule) OrderLink(_ context.Context, req integration.AdapterRequest) (integration.AdapterResult, error) {
	orderID, err := requireField(req, "orderId")
	if err != nil {
		return integration.ErrorResult(err.Error()), nil
	}
	return integration.AdapterResult{"url": taobaoOrderLink(orderID)}, nil
}

// CancelOrderWebhook extracts the trade id from a trade close message
func (m *TaobaoModule) CancelOrderWebhook(_ context.Context, req integration.AdapterRequest) (integration.AdapterResult, error) {
	msg, trade, err := m.parseMessage(req)
	if err != nil {
		return integration.ErrorResult(err.Error()), nil
	}
	if !taobaoCancelTopics[msg.Topic] {
		return integration.ErrorResult(fmt.Sprintf("unsupported topic %q", msg.Topic)), nil
	}
	return integration.AdapterResult{"orderId": formatID(trade.Tid)}, nil
}

// CreateOrderWebhook extracts the trade id from a trade create message and
// fetches the full trade so it can be imported.
func (m *TaobaoModule) CreateOrderWebhook(ctx context.Context, req integration.AdapterRequest) (integration.AdapterResult, error) {
	msg, trade, err := m.parseMessage(req)
	if err != nil {
		return integration.ErrorResult(err.Error()), nil
	}
	if !taobaoCreateTopics[msg.Topic] {
		return integration.ErrorResult(fmt.Sprintf("unsupported topic %q", msg.Topic)), nil
	}

	orderID := formatID(trade.Tid)
	params := map[string]string{
		"method": "taobao.trade.fullinfo.get",
		"tid":    orderID,
		"fields": taobaoTradeFields,
	}
	var resp TaobaoTradeGetResponse
	if err := m.call(ctx, req, params, &resp); err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}

	out := map[string]any{"orderId": orderID}
	if full := resp.TradeFullinfoGetResponse; full != nil && full.Trade != nil {
		out["order"] = m.toPlatformOrder(full.Trade)
	}
	return integration.ResultFrom(out)
}

// parseMessage decodes the pushed message and verifies its signature when
// the module has an app secret.
func (m *TaobaoModule) parseMessage(req integration.AdapterRequest) (TaobaoMessage, TaobaoTradeMessage, error) {
	var msg TaobaoMessage
	raw, _ := req.Field("payload")
	switch p := raw.(type) {
	case string:
		if err := json.Unmarshal([]byte(p), &msg); err != nil {
			return msg, TaobaoTradeMessage{}, fmt.Errorf("invalid message: %v", err)
		}
	case nil:
		return msg, TaobaoTradeMessage{}, fmt.Errorf("%w: payload", ErrMissingField)
	default:
		b, err := json.Marshal(p)
		if err != nil {
			return msg, TaobaoTradeMessage{}, fmt.Errorf("invalid message: %v", err)
		}
		if err := json.Unmarshal(b, &msg); err != nil {
			return msg, TaobaoTradeMessage{}, fmt.Errorf("invalid message: %v", err)
		}
	}

	if m.config.AppSecret != "" {
		got := headerValue(req, TaobaoSignatureHeader)
		want := m.config.SignHMAC(msg.signParams())
		if got == "" || !hmac.Equal([]byte(strings.ToUpper(got)), []byte(want)) {
			return msg, TaobaoTradeMessage{}, ErrInvalidSignature
		}
	}

	var trade TaobaoTradeMessage
	if err := json.Unmarshal([]byte(msg.Content), &trade); err != nil {
		return msg, trade, fmt.Errorf("invalid message content: %v", err)
	}
	if trade.Tid == 0 {
		return msg, trade, fmt.Errorf("%w: tid", ErrMissingField)
	}
	return msg, trade, nil
}

// call signs params, posts them to the shop's gateway and decodes into out
func (m *TaobaoModule) call(ctx context.Context, req integration.AdapterRequest, params map[string]string, out any) error {
	if err := m.config.Validate(); err != nil {
		return err
	}
	if req.AccessToken == "" {
		return ErrTaobaoConfigMissingSessionKey
	}

	params["app_key"] = m.config.AppKey
	params["session"] = req.AccessToken
	params["timestamp"] = m.now().In(taobaoLocation).Format(taobaoTimeLayout)
	params["format"] = "json"
	params["v"] = "2.0"
	params["sign_method"] = "md5"
	params["sign"] = m.config.Sign(params)

	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}

	ctx, cancel := withDeadline(ctx)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, m.config.endpoint(req.Domain), strings.NewReader(values.Encode()))
	if err != nil {
		return fmt.Errorf("taobao: failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, err := send(m.client, httpReq)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", ErrPlatformInvalidResponse, err)
	}
	return nil
}

func (m *TaobaoModule) toPlatformOrder(trade *TaobaoTrade) integration.PlatformOrder {
	orderID := formatID(trade.Tid)
	order := integration.PlatformOrder{
		OrderID:        integration.ExternalID(orderID),
		OrderName:      "#" + orderID,
		Link:           taobaoOrderLink(orderID),
		FirstName:      trade.ReceiverName,
		StreetAddress1: trade.ReceiverAddress,
		StreetAddress2: trade.ReceiverDistrict,
		City:           trade.ReceiverCity,
		State:          trade.ReceiverState,
		Zip:            trade.ReceiverZip,
		Country:        "CN",
		Phone:          firstNonEmpty(trade.ReceiverMobile, trade.ReceiverPhone),
		Note:           strings.TrimSpace(strings.Join([]string{trade.BuyerMessage, trade.SellerMemo}, " ")),
		TotalPrice:     ParseDecimal(firstNonEmpty(trade.Payment, trade.TotalFee)),
		LineItems:      []integration.LineItem{},
	}
	if trade.Created != "" {
		if t, err := time.ParseInLocation(taobaoTimeLayout, trade.Created, taobaoLocation); err == nil {
			order.Date = t.UTC().Format(time.RFC3339)
		}
	}

	if trade.Orders != nil {
		for _, item := range trade.Orders.Order {
			order.LineItems = append(order.LineItems, integration.LineItem{
				LineItemID: formatID(item.Oid),
				ProductID:  formatID(item.NumIid),
				VariantID:  item.SkuID,
				Name:       strings.TrimSpace(item.Title + " " + item.SkuPropertiesName),
				Image:      item.PicPath,
				Quantity:   int(item.Num),
				Price:      ParseDecimal(item.Price),
			})
		}
	} else if trade.NumIid > 0 {
		order.LineItems = append(order.LineItems, integration.LineItem{
			ProductID: formatID(trade.NumIid),
			Name:      trade.Title,
			Image:     trade.PicPath,
			Quantity:  int(trade.Num),
			Price:     ParseDecimal(trade.Price),
		})
	}
	if trade.Sid != "" {
		order.Fulfillments = []integration.Fulfillment{{Company: trade.CompanyName, Number: trade.Sid}}
	}
	if order.TotalPrice.IsZero() {
		total := decimal.Zero
		for _, li := range order.LineItems {
			total = total.Add(li.Price.Mul(decimal.NewFromInt(int64(li.Quantity))))
		}
		order.TotalPrice = total
	}
	return order
}

func taobaoOrderLink(orderID string) string {
	return "https://trade.taobao.com/trade/detail/trade_item_detail.htm?bizOrderId=" + url.QueryEscape(orderID)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// mapShippingCompanyToTaobaoCode maps common carrier names to Taobao codes
func mapShippingCompanyToTaobaoCode(company string) string {
	companyMap := map[string]string{
		"顺丰":   "SF",
		"顺丰速运": "SF",
		"圆通":   "YTO",
		"中通":   "ZTO",
		"申通":   "STO",
		"韵达":   "YUNDA",
		"邮政":   "POSTB",
		"EMS":  "EMS",
		"京东":   "JD",
		"德邦":   "DBL",
		"极兔":   "JTSD",
		"SF":   "SF",
		"YTO":  "YTO",
		"ZTO":  "ZTO",
	}
	if code, ok := companyMap[company]; ok {
		return code
	}
	upper := strings.ToUpper(company)
	for name, code := range companyMap {
		if strings.Contains(upper, strings.ToUpper(name)) {
			return code
		}
	}
	return "OTHER"
}
