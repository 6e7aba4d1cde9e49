package postgres

import (
	"encoding/json"
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/facture/customer"
	"github.com/xraph/facture/id"
	"github.com/xraph/facture/invoice"
	"github.com/xraph/facture/param"
	"github.com/xraph/facture/product"
	"github.com/xraph/facture/types"
)

// ==================== Customer models ====================

type customerModel struct {
	grove.BaseModel `grove:"table:facture_customers"`

	TaxID      string    `grove:"tax_id,pk"`
	FirstNames string    `grove:"first_names"`
	LastNames  string    `grove:"last_names"`
	Address    string    `grove:"address"`
	CreatedAt  time.Time `grove:"created_at"`
	UpdatedAt  time.Time `grove:"updated_at"`
}

func toCustomerModel(c *customer.Customer) *customerModel {
	return &customerModel{
		TaxID:      c.TaxID,
		FirstNames: c.FirstNames,
		LastNames:  c.LastNames,
		Address:    c.Address,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

func fromCustomerModel(m *customerModel) *customer.Customer {
	return &customer.Customer{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		TaxID:      m.TaxID,
		FirstNames: m.FirstNames,
		LastNames:  m.LastNames,
		Address:    m.Address,
	}
}

// ==================== Product models ====================

type productModel struct {
	grove.BaseModel `grove:"table:facture_products"`

	Code              int       `grove:"code,pk"`
	Name              string    `grove:"name"`
	Description       string    `grove:"description"`
	UnitPriceCents    int64     `grove:"unit_price_cents"`
	UnitPriceCurrency string    `grove:"unit_price_currency"`
	Stock             int       `grove:"stock"`
	Taxable           bool      `grove:"taxable"`
	CreatedAt         time.Time `grove:"created_at"`
	UpdatedAt         time.Time `grove:"updated_at"`
}

func toProductModel(p *product.Product) *productModel {
	return &productModel{
		Code:              p.Code,
		Name:              p.Name,
		Description:       p.Description,
		UnitPriceCents:    p.UnitPrice.Amount,
		UnitPriceCurrency: p.UnitPrice.Currency,
		Stock:             p.Stock,
		Taxable:           p.Taxable,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

func fromProductModel(m *productModel) *product.Product {
	return &product.Product{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		Code:        m.Code,
		Name:        m.Name,
		Description: m.Description,
		UnitPrice:   types.Money{Amount: m.UnitPriceCents, Currency: m.UnitPriceCurrency},
		Stock:       m.Stock,
		Taxable:     m.Taxable,
	}
}

// ==================== Parameter models ====================

type parameterModel struct {
	grove.BaseModel `grove:"table:facture_parameters"`

	Name      string    `grove:"name,pk"`
	Value     string    `grove:"value"`
	CreatedAt time.Time `grove:"created_at"`
	UpdatedAt time.Time `grove:"updated_at"`
}

func toParameterModel(p *param.Parameter) *parameterModel {
	return &parameterModel{
		Name:      p.Name,
		Value:     p.Value,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func fromParameterModel(m *parameterModel) *param.Parameter {
	return &param.Parameter{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		Name:  m.Name,
		Value: m.Value,
	}
}

// ==================== Invoice models ====================

type invoiceModel struct {
	grove.BaseModel `grove:"table:facture_invoices"`

	ID                    string          `grove:"id,pk"`
	Number                string          `grove:"number"`
	Status                string          `grove:"status"`
	IssueDate             time.Time       `grove:"issue_date"`
	CustomerTaxID         string          `grove:"customer_tax_id"`
	Currency              string          `grove:"currency"`
	ZeroRatedBaseCents    int64           `grove:"zero_rated_base_cents"`
	ZeroRatedBaseCurrency string          `grove:"zero_rated_base_currency"`
	SubtotalAmountCents   int64           `grove:"subtotal_amount_cents"`
	SubtotalCurrency      string          `grove:"subtotal_currency"`
	TaxAmountCents        int64           `grove:"tax_amount_cents"`
	TaxCurrency           string          `grove:"tax_currency"`
	TotalAmountCents      int64           `grove:"total_amount_cents"`
	TotalCurrency         string          `grove:"total_currency"`
	LineItems             json.RawMessage `grove:"line_items,type:jsonb"`
	CreatedAt             time.Time       `grove:"created_at"`
	UpdatedAt             time.Time       `grove:"updated_at"`
}

func toInvoiceModel(inv *invoice.Invoice) *invoiceModel {
	lineItems, _ := json.Marshal(inv.LineItems) //nolint:errcheck // best-effort

	return &invoiceModel{
		ID:                    inv.ID.String(),
		Number:                inv.Number,
		Status:                string(inv.Status),
		IssueDate:             inv.IssueDate,
		CustomerTaxID:         inv.CustomerTaxID,
		Currency:              inv.Currency,
		ZeroRatedBaseCents:    inv.ZeroRatedBase.Amount,
		ZeroRatedBaseCurrency: inv.ZeroRatedBase.Currency,
		SubtotalAmountCents:   inv.Subtotal.Amount,
		SubtotalCurrency:      inv.Subtotal.Currency,
		TaxAmountCents:        inv.TaxAmount.Amount,
		TaxCurrency:           inv.TaxAmount.Currency,
		TotalAmountCents:      inv.Total.Amount,
		TotalCurrency:         inv.Total.Currency,
		LineItems:             lineItems,
		CreatedAt:             inv.CreatedAt,
		UpdatedAt:             inv.UpdatedAt,
	}
}

func fromInvoiceModel(m *invoiceModel) (*invoice.Invoice, error) {
	invoiceID, err := id.ParseInvoiceID(m.ID)
	if err != nil {
		return nil, err
	}

	var lineItems []invoice.LineItem
	if len(m.LineItems) > 0 {
		_ = json.Unmarshal(m.LineItems, &lineItems) //nolint:errcheck // best-effort
	}

	return &invoice.Invoice{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:            invoiceID,
		Number:        m.Number,
		Status:        invoice.Status(m.Status),
		IssueDate:     m.IssueDate,
		CustomerTaxID: m.CustomerTaxID,
		Currency:      m.Currency,
		ZeroRatedBase: types.Money{Amount: m.ZeroRatedBaseCents, Currency: m.ZeroRatedBaseCurrency},
		Subtotal:      types.Money{Amount: m.SubtotalAmountCents, Currency: m.SubtotalCurrency},
		TaxAmount:     types.Money{Amount: m.TaxAmountCents, Currency: m.TaxCurrency},
		Total:         types.Money{Amount: m.TotalAmountCents, Currency: m.TotalCurrency},
		LineItems:     lineItems,
	}, nil
}
