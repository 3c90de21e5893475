package client

import (
	"net/url"
	"strconv"
)

// Product is the listing shape the API returns.
type Product struct {
	ID       uint     `json:"id"`
	SellerID uint     `json:"seller_id"`
	Title    string   `json:"title"`
	Price    float64  `json:"price"`
	Stock    int      `json:"stock"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
	Status   string   `json:"status"`
	Rating   float64  `json:"rating"`
}

// Category is one entry of the category breakdown.
type Category struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// Pagination mirrors the server's page envelope.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// ProductFilter is the catalogue query the store sends.
type ProductFilter struct {
	Category string
	Search   string
	Page     int
	Limit    int
}

// ProductState is the product store's state snapshot.
type ProductState struct {
	Products   []Product
	Detail     *Product
	Featured   []Product
	Categories []Category
	Filter     ProductFilter
	Pagination Pagination
	Loading    bool
	Err        string
}

type productKind int

const (
	productLoading productKind = iota
	productListLoaded
	productDetailLoaded
	productFeaturedLoaded
	productCategoriesLoaded
	productFailed
)

type productAction struct {
	kind       productKind
	products   []Product
	detail     *Product
	categories []Category
	filter     ProductFilter
	pagination Pagination
	err        string
}

func productReduce(s ProductState, a productAction) ProductState {
	switch a.kind {
	case productLoading:
		s.Loading = true
		s.Err = ""
	case productListLoaded:
		s.Products = a.products
		s.Filter = a.filter
		s.Pagination = a.pagination
		s.Loading = false
	case productDetailLoaded:
		s.Detail = a.detail
		s.Loading = false
	case productFeaturedLoaded:
		s.Featured = a.products
		s.Loading = false
	case productCategoriesLoaded:
		s.Categories = a.categories
		s.Loading = false
	case productFailed:
		s.Loading = false
		s.Err = a.err
	}
	return s
}

// ProductStore drives catalogue browsing.
type ProductStore struct {
	*Store[ProductState, productAction]
	api *API
}

func NewProductStore(api *API) *ProductStore {
	return &ProductStore{
		Store: NewStore(ProductState{}, productReduce),
		api:   api,
	}
}

// Bootstrap pre-loads the storefront: featured picks and the category
// breakdown.
func (s *ProductStore) Bootstrap() Result {
	if r := s.LoadFeatured(10); !r.Success {
		return r
	}
	return s.LoadCategories()
}

func queryString(f ProductFilter) string {
	q := "?page="
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 20
	}
	q += strconv.Itoa(f.Page) + "&limit=" + strconv.Itoa(f.Limit)
	if f.Category != "" {
		q += "&category=" + url.QueryEscape(f.Category)
	}
	if f.Search != "" {
		q += "&search=" + url.QueryEscape(f.Search)
	}
	return q
}

// Search loads a catalogue page matching the filter.
func (s *ProductStore) Search(f ProductFilter) Result {
	s.Dispatch(productAction{kind: productLoading})

	var env struct {
		Products   []Product  `json:"products"`
		Pagination Pagination `json:"pagination"`
	}
	if err := s.api.Get("/api/products"+queryString(f), "", &env); err != nil {
		s.Dispatch(productAction{kind: productFailed, err: err.Error()})
		return failErr(err)
	}

	s.Dispatch(productAction{
		kind:       productListLoaded,
		products:   env.Products,
		filter:     f,
		pagination: env.Pagination,
	})
	return ok()
}

// LoadDetail fetches one listing.
func (s *ProductStore) LoadDetail(id uint) Result {
	s.Dispatch(productAction{kind: productLoading})

	var env struct {
		Product *Product `json:"product"`
	}
	if err := s.api.Get("/api/products/"+strconv.FormatUint(uint64(id), 10), "", &env); err != nil {
		s.Dispatch(productAction{kind: productFailed, err: err.Error()})
		return failErr(err)
	}

	s.Dispatch(productAction{kind: productDetailLoaded, detail: env.Product})
	return ok()
}

// LoadFeatured fetches the storefront picks.
func (s *ProductStore) LoadFeatured(limit int) Result {
	var env struct {
		Products []Product `json:"products"`
	}
	if err := s.api.Get("/api/products/featured?limit="+strconv.Itoa(limit), "", &env); err != nil {
		s.Dispatch(productAction{kind: productFailed, err: err.Error()})
		return failErr(err)
	}

	s.Dispatch(productAction{kind: productFeaturedLoaded, products: env.Products})
	return ok()
}

// LoadCategories fetches the category breakdown.
func (s *ProductStore) LoadCategories() Result {
	var env struct {
		Categories []Category `json:"categories"`
	}
	if err := s.api.Get("/api/products/categories", "", &env); err != nil {
		s.Dispatch(productAction{kind: productFailed, err: err.Error()})
		return failErr(err)
	}

	s.Dispatch(productAction{kind: productCategoriesLoaded, categories: env.Categories})
	return ok()
}
