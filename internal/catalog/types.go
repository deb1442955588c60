package catalog

import "github.com/angelmondragon/lttsale-console/pkg/types"

// Ref is the {id, name} stub the backend embeds for related entities.
type Ref struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Product struct {
	ID                string      `json:"id"`
	SKU               string      `json:"sku,omitempty"`
	Name              string      `json:"name"`
	Description       string      `json:"description,omitempty"`
	Price             types.Money `json:"price"`
	CostPrice         types.Money `json:"costPrice"`
	CategoryID        string      `json:"categoryId,omitempty"`
	Category          *Ref        `json:"category,omitempty"`
	Image             string      `json:"image,omitempty"`
	StockQty          int         `json:"stockQty"`
	LowStockThreshold int         `json:"lowStockThreshold"`
	TrackInventory    bool        `json:"trackInventory"`
	IsLowStock        bool        `json:"isLowStock"`
	IsPublished       bool        `json:"isPublished"`
	CreatedAt         string      `json:"createdAt,omitempty"`
	UpdatedAt         string      `json:"updatedAt,omitempty"`
}

type ProductFilter struct {
	CategoryID  string `json:"categoryId,omitempty"`
	IsPublished *bool  `json:"isPublished,omitempty"`
	Search      string `json:"search,omitempty"`
}

type ProductInput struct {
	Name        string      `json:"name" validate:"notblank"`
	Description string      `json:"description,omitempty"`
	Price       types.Money `json:"price"`
	CategoryID  string      `json:"categoryId,omitempty"`
	Image       string      `json:"image,omitempty"`
	IsPublished *bool       `json:"isPublished,omitempty"`
}

type ProductUpdate struct {
	Name        *string      `json:"name,omitempty" validate:"omitempty,notblank"`
	Description *string      `json:"description,omitempty"`
	Price       *types.Money `json:"price,omitempty"`
	CategoryID  *string      `json:"categoryId,omitempty"`
	Image       *string      `json:"image,omitempty"`
	IsPublished *bool        `json:"isPublished,omitempty"`
}

type Customer struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Address     string `json:"address"`
	BuildingID  string `json:"buildingId,omitempty"`
	Building    *Ref   `json:"building,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Image       string `json:"image,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
}

type CustomerFilter struct {
	BuildingID string `json:"buildingId,omitempty"`
	Search     string `json:"search,omitempty"`
}

type CustomerInput struct {
	Name        string `json:"name" validate:"notblank"`
	Address     string `json:"address" validate:"notblank"`
	BuildingID  string `json:"buildingId,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Image       string `json:"image,omitempty"`
}

type CustomerUpdate struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,notblank"`
	Address     *string `json:"address,omitempty" validate:"omitempty,notblank"`
	BuildingID  *string `json:"buildingId,omitempty"`
	PhoneNumber *string `json:"phoneNumber,omitempty"`
	Image       *string `json:"image,omitempty"`
}

// Named covers buildings, categories and apartments, which only carry a name.
type Named struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

type NameInput struct {
	Name string `json:"name" validate:"notblank"`
}

type AnalyticsFilter struct {
	DateFrom   string `json:"dateFrom,omitempty"`
	DateTo     string `json:"dateTo,omitempty"`
	CustomerID string `json:"customerId,omitempty"`
}

// OrderAnalytics is the dashboard summary for a date range.
type OrderAnalytics struct {
	TotalOrders       int         `json:"totalOrders"`
	TotalRevenue      types.Money `json:"totalRevenue"`
	TotalProfit       types.Money `json:"totalProfit"`
	AverageOrderValue types.Money `json:"averageOrderValue"`
	PendingOrders     int         `json:"pendingOrders"`
	ConfirmedOrders   int         `json:"confirmedOrders"`
	PreparingOrders   int         `json:"preparingOrders"`
	ShippedOrders     int         `json:"shippedOrders"`
	DeliveredOrders   int         `json:"deliveredOrders"`
	CancelledOrders   int         `json:"cancelledOrders"`
	PaidOrders        int         `json:"paidOrders"`
	UnpaidOrders      int         `json:"unpaidOrders"`
	PaidAmount        types.Money `json:"paidAmount"`
	UnpaidAmount      types.Money `json:"unpaidAmount"`
}
