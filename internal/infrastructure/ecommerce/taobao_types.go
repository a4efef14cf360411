package ecommerce

import "fmt"

// TaobaoResponse is the base response wrapper for all Taobao API calls
type TaobaoResponse struct {
	ErrorResponse *TaobaoErrorResponse `json:"error_response,omitempty"`
}

// TaobaoErrorResponse represents an error response from Taobao API
type TaobaoErrorResponse struct {
	Code      any    `json:"code"`
	Msg       string `json:"msg"`
	SubCode   string `json:"sub_code,omitempty"`
	SubMsg    string `json:"sub_msg,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// IsSuccess returns true if the response indicates success
func (r *TaobaoResponse) IsSuccess() bool {
	return r.ErrorResponse == nil
}

// Err converts an error response into a request failure
func (r *TaobaoResponse) Err() error {
	if r.ErrorResponse == nil {
		return nil
	}
	msg := r.ErrorResponse.Msg
	if r.ErrorResponse.SubMsg != "" {
		msg = r.ErrorResponse.SubMsg
	}
	return fmt.Errorf("%w: taobao %v - %s", ErrPlatformRequestFailed, r.ErrorResponse.Code, msg)
}

// TaobaoTradesGetResponse is the response for taobao.trades.sold.get
type TaobaoTradesGetResponse struct {
	TaobaoResponse
	TradesSoldGetResponse *TradesSoldGetResponse `json:"trades_sold_get_response,omitempty"`
}

// TradesSoldGetResponse contains the sold trades data
type TradesSoldGetResponse struct {
	TotalResults int64         `json:"total_results"`
	HasNext      bool          `json:"has_next"`
	Trades       *TaobaoTrades `json:"trades,omitempty"`
}

// TaobaoTrades is a wrapper for trade list
type TaobaoTrades struct {
	Trade []TaobaoTrade `json:"trade"`
}

// TaobaoTrade represents a trade (order) from Taobao
type TaobaoTrade struct {
	Tid       int64  `json:"tid"`
	Status    string `json:"status"`
	BuyerNick string `json:"buyer_nick"`
	Created   string `json:"created,omitempty"`

	Payment  string `json:"payment,omitempty"`
	TotalFee string `json:"total_fee,omitempty"`
	PostFee  string `json:"post_fee,omitempty"`

	ReceiverName     string `json:"receiver_name,omitempty"`
	ReceiverState    string `json:"receiver_state,omitempty"`
	ReceiverCity     string `json:"receiver_city,omitempty"`
	ReceiverDistrict string `json:"receiver_district,omitempty"`
	ReceiverAddress  string `json:"receiver_address,omitempty"`
	ReceiverZip      string `json:"receiver_zip,omitempty"`
	ReceiverMobile   string `json:"receiver_mobile,omitempty"`
	ReceiverPhone    string `json:"receiver_phone,omitempty"`

	Sid         string `json:"sid,omitempty"`
	CompanyName string `json:"company_name,omitempty"`

	BuyerMessage string `json:"buyer_message,omitempty"`
	SellerMemo   string `json:"seller_memo,omitempty"`

	Orders *TaobaoOrders `json:"orders,omitempty"`

	// single-item trades carry the item inline
	NumIid  int64  `json:"num_iid,omitempty"`
	Title   string `json:"title,omitempty"`
	Price   string `json:"price,omitempty"`
	Num     int64  `json:"num,omitempty"`
	PicPath string `json:"pic_path,omitempty"`
}

// TaobaoOrders is a wrapper for the sub-orders of a trade
type TaobaoOrders struct {
	Order []TaobaoOrder `json:"order"`
}

// TaobaoOrder represents a trade line item
type TaobaoOrder struct {
	Oid               int64  `json:"oid"`
	NumIid            int64  `json:"num_iid"`
	SkuID             string `json:"sku_id,omitempty"`
	Title             string `json:"title"`
	SkuPropertiesName string `json:"sku_properties_name,omitempty"`
	Price             string `json:"price"`
	Num               int64  `json:"num"`
	PicPath           string `json:"pic_path,omitempty"`
}

// TaobaoTradeGetResponse is the response for taobao.trade.fullinfo.get
type TaobaoTradeGetResponse struct {
	TaobaoResponse
	TradeFullinfoGetResponse *struct {
		Trade *TaobaoTrade `json:"trade,omitempty"`
	} `json:"trade_fullinfo_get_response,omitempty"`
}

// TaobaoLogisticsSendResponse is the response for taobao.logistics.offline.send
type TaobaoLogisticsSendResponse struct {
	TaobaoResponse
	LogisticsOfflineSendResponse *struct {
		Shipping *struct {
			IsSuccess bool `json:"is_success"`
		} `json:"shipping,omitempty"`
	} `json:"logistics_offline_send_response,omitempty"`
}

// TaobaoItemSellerGetResponse is the response for taobao.item.seller.get
type TaobaoItemSellerGetResponse struct {
	TaobaoResponse
	ItemSellerGetResponse *struct {
		Item *TaobaoItem `json:"item,omitempty"`
	} `json:"item_seller_get_response,omitempty"`
}

// TaobaoItem represents a listed product
type TaobaoItem struct {
	NumIid        int64  `json:"num_iid"`
	Title         string `json:"title"`
	Num           int64  `json:"num,omitempty"`
	Price         string `json:"price,omitempty"`
	PicURL        string `json:"pic_url,omitempty"`
	DetailURL     string `json:"detail_url,omitempty"`
	ApproveStatus string `json:"approve_status,omitempty"`
	Skus          *struct {
		Sku []TaobaoSku `json:"sku"`
	} `json:"skus,omitempty"`
}

// TaobaoSku represents a SKU of a listed product
type TaobaoSku struct {
	SkuID          int64  `json:"sku_id"`
	PropertiesName string `json:"properties_name,omitempty"`
	Quantity       int64  `json:"quantity,omitempty"`
	Price          string `json:"price,omitempty"`
}

// TaobaoMessage is a message service (TMC) push delivered to the order webhooks.
// Content is itself a JSON document.
type TaobaoMessage struct {
	Topic   string `json:"topic"`
	Content string `json:"content"`
	PubTime string `json:"pub_time,omitempty"`
	UserID  any    `json:"user_id,omitempty"`
}

// TaobaoTradeMessage is the content of a trade topic message
type TaobaoTradeMessage struct {
	Tid    int64  `json:"tid"`
	Status string `json:"status,omitempty"`
}

// signParams are the message fields covered by the push signature
func (m TaobaoMessage) signParams() map[string]string {
	return map[string]string{
		"topic":    m.Topic,
		"content":  m.Content,
		"pub_time": m.PubTime,
	}
}
