package ecommerce

import "fmt"

// centsPerYuan converts Douyin fen amounts to yuan
const centsPerYuan = 100

// DouyinResponse is the base response wrapper for all Douyin API calls
type DouyinResponse struct {
	ErrNo   int    `json:"err_no"`
	Message string `json:"message"`
	LogID   string `json:"log_id,omitempty"`
}

// IsSuccess returns true if the response indicates success
func (r *DouyinResponse) IsSuccess() bool {
	return r.ErrNo == 0
}

func (r *DouyinResponse) String() string {
	return fmt.Sprintf("douyin %d - %s", r.ErrNo, r.Message)
}

// DouyinOrderCreateRequest is the param_json of order.create
type DouyinOrderCreateRequest struct {
	OutOrderNo string                  `json:"out_order_no"`
	Receiver   DouyinReceiver          `json:"post_receiver"`
	Items      []DouyinOrderCreateItem `json:"items"`
	Remark     string                  `json:"remark,omitempty"`
}

// DouyinReceiver is the shipping destination of a created order
type DouyinReceiver struct {
	Name     string `json:"name"`
	Tel      string `json:"tel"`
	Province string `json:"province,omitempty"`
	City     string `json:"city,omitempty"`
	Town     string `json:"town,omitempty"`
	Detail   string `json:"detail"`
	Zip      string `json:"zip,omitempty"`
	Email    string `json:"email,omitempty"`
}

// DouyinOrderCreateItem is one product line of a created order
type DouyinOrderCreateItem struct {
	ProductID string `json:"product_id"`
	SkuID     string `json:"sku_id,omitempty"`
	Num       int    `json:"num"`
}

// DouyinOrderCreateResponse is the response for order.create
type DouyinOrderCreateResponse struct {
	DouyinResponse
	Data *struct {
		OrderID string `json:"order_id"`
		PayURL  string `json:"pay_url,omitempty"`
	} `json:"data,omitempty"`
}

// DouyinProductListResponse is the response for product.listV2
type DouyinProductListResponse struct {
	DouyinResponse
	Data *struct {
		Total int64           `json:"total"`
		Data  []DouyinProduct `json:"data,omitempty"`
	} `json:"data,omitempty"`
}

// DouyinProductDetailResponse is the response for product.detail
type DouyinProductDetailResponse struct {
	DouyinResponse
	Data *struct {
		Product *DouyinProduct `json:"product,omitempty"`
	} `json:"data,omitempty"`
}

// DouyinProduct represents a product from Douyin platform. Prices are in fen.
type DouyinProduct struct {
	ProductID     int64       `json:"product_id"`
	Name          string      `json:"name"`
	Img           string      `json:"img"`
	DiscountPrice int64       `json:"discount_price"`
	Status        int         `json:"status"` // 0 online, 1 offline
	SkuList       []DouyinSku `json:"sku_list,omitempty"`
}

// DouyinSku represents a SKU
type DouyinSku struct {
	SkuID      int64 `json:"sku_id"`
	StockNum   int64 `json:"stock_num"`
	Price      int64 `json:"price"`
	SpecDetail []struct {
		SpecName  string `json:"spec_name"`
		ValueName string `json:"value_name"`
	} `json:"spec_detail,omitempty"`
}
