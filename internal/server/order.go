package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	ordersourcedomain "github.com/smallbiznis/quotient/internal/ordersource/domain"
	reconciledomain "github.com/smallbiznis/quotient/internal/reconcile/domain"
	storedomain "github.com/smallbiznis/quotient/internal/store/domain"
	transferdomain "github.com/smallbiznis/quotient/internal/transfer/domain"
)

type listOrdersQuery struct {
	StoreID   string `form:"store_id"`
	DaysBack  int    `form:"days_back"`
	PageToken string `form:"page_token"`
}

type orderView struct {
	ordersourcedomain.Order

	Transferred bool `json:"transferred"`
}

type listOrdersResponse struct {
	Orders       []orderView `json:"orders"`
	HasNextPage  bool        `json:"has_next_page"`
	EndCursor    string      `json:"end_cursor,omitempty"`
	TotalFetched int         `json:"total_fetched"`
}

type validateOrderRequest struct {
	StoreID string `json:"store_id"`
	OrderID string `json:"order_id"`
}

type validateOrderResponse struct {
	OrderName  string                            `json:"order_name"`
	Validation *reconciledomain.ValidationResult `json:"validation"`
}

type transferOrdersRequest struct {
	StoreID         string           `json:"store_id"`
	OrderIDs        []string         `json:"order_ids"`
	CustomCustomers map[string]int64 `json:"custom_customers"`
}

func (s *Server) ListOrders(c *gin.Context) {
	var query listOrdersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if strings.TrimSpace(query.StoreID) == "" {
		AbortWithError(c, newValidationError("store_id", "required", "store_id is required"))
		return
	}

	ctx := c.Request.Context()

	st, err := s.storeSvc.GetStore(ctx, storedomain.GetStoreRequest{StoreID: strings.TrimSpace(query.StoreID)})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	page, err := s.orderSvc.ListUnfulfilledOrders(ctx, ordersourcedomain.Credentials{
		ShopURL:  st.ShopURL,
		APIToken: st.APIToken,
	}, ordersourcedomain.ListOrdersRequest{
		DaysBack: query.DaysBack,
		Cursor:   strings.TrimSpace(query.PageToken),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	orderIDs := make([]string, 0, len(page.Orders))
	for _, order := range page.Orders {
		orderIDs = append(orderIDs, order.ID)
	}

	transferred, err := s.transferSvc.TransferredSet(ctx, st.ID.String(), orderIDs)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp := listOrdersResponse{
		Orders:       make([]orderView, 0, len(page.Orders)),
		HasNextPage:  page.HasNextPage,
		EndCursor:    page.EndCursor,
		TotalFetched: page.TotalFetched,
	}
	for _, order := range page.Orders {
		resp.Orders = append(resp.Orders, orderView{
			Order:       order,
			Transferred: transferred[order.ID],
		})
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ValidateOrder(c *gin.Context) {
	var req validateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if strings.TrimSpace(req.StoreID) == "" {
		AbortWithError(c, newValidationError("store_id", "required", "store_id is required"))
		return
	}
	if strings.TrimSpace(req.OrderID) == "" {
		AbortWithError(c, newValidationError("order_id", "required", "order_id is required"))
		return
	}

	ctx := c.Request.Context()

	st, err := s.storeSvc.GetStore(ctx, storedomain.GetStoreRequest{StoreID: strings.TrimSpace(req.StoreID)})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	order, err := s.orderSvc.GetOrder(ctx, ordersourcedomain.Credentials{
		ShopURL:  st.ShopURL,
		APIToken: st.APIToken,
	}, strings.TrimSpace(req.OrderID))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	validation, err := s.reconciler.Resolve(ctx, order.ID, order.LineItems)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": validateOrderResponse{
		OrderName:  order.Name,
		Validation: validation,
	}})
}

func (s *Server) TransferOrders(c *gin.Context) {
	var req transferOrdersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.transferSvc.Transfer(c.Request.Context(), transferdomain.TransferRequest{
		StoreID:         strings.TrimSpace(req.StoreID),
		OrderIDs:        req.OrderIDs,
		CustomCustomers: req.CustomCustomers,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func isOrderValidationError(err error) bool {
	switch err {
	case ordersourcedomain.ErrInvalidShopURL,
		ordersourcedomain.ErrInvalidAPIToken,
		ordersourcedomain.ErrInvalidOrderID:
		return true
	default:
		return false
	}
}

func isTransferValidationError(err error) bool {
	switch err {
	case transferdomain.ErrInvalidStoreID,
		transferdomain.ErrInvalidOrderIDs,
		transferdomain.ErrInvalidRecordID,
		transferdomain.ErrInvalidDateFrom,
		transferdomain.ErrInvalidDateTo:
		return true
	default:
		return false
	}
}
