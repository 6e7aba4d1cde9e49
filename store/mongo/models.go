package mongo

import (
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

	TaxID      string    `grove:"tax_id,pk"   bson:"_id"`
	FirstNames string    `grove:"first_names" bson:"first_names"`
	LastNames  string    `grove:"last_names"  bson:"last_names"`
	Address    string    `grove:"address"     bson:"address"`
	CreatedAt  time.Time `grove:"created_at"  bson:"created_at"`
	UpdatedAt  time.Time `grove:"updated_at"  bson:"updated_at"`
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

	Code              int       `grove:"code,pk"             bson:"_id"`
	Name              string    `grove:"name"                bson:"name"`
	Description       string    `grove:"description"         bson:"description"`
	UnitPriceCents    int64     `grove:"unit_price_cents"    bson:"unit_price_cents"`
	UnitPriceCurrency string    `grove:"unit_price_currency" bson:"unit_price_currency"`
	Stock             int       `grove:"stock"               bson:"stock"`
	Taxable           bool      `grove:"taxable"             bson:"taxable"`
	CreatedAt         time.Time `grove:"created_at"          bson:"created_at"`
	UpdatedAt         time.Time `grove:"updated_at"          bson:"updated_at"`
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

	Name      string    `grove:"name,pk"    bson:"_id"`
	Value     string    `grove:"value"      bson:"value"`
	CreatedAt time.Time `grove:"created_at" bson:"created_at"`
	UpdatedAt time.Time `grove:"updated_at" bson:"updated_at"`
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

// The invoice aggregate is one document: header fields plus embedded line
// items, so a commit is a single insert.
type invoiceModel struct {
	grove.BaseModel `grove:"table:facture_invoices"`

	ID                    string          `grove:"id,pk"                    bson:"_id"`
	Number                string          `grove:"number"                   bson:"number"`
	NumberValue           int64           `grove:"number_value"             bson:"number_value"`
	Status                string          `grove:"status"                   bson:"status"`
	IssueDate             time.Time       `grove:"issue_date"               bson:"issue_date"`
	CustomerTaxID         string          `grove:"customer_tax_id"          bson:"customer_tax_id"`
	Currency              string          `grove:"currency"                 bson:"currency"`
	ZeroRatedBaseCents    int64           `grove:"zero_rated_base_cents"    bson:"zero_rated_base_cents"`
	ZeroRatedBaseCurrency string          `grove:"zero_rated_base_currency" bson:"zero_rated_base_currency"`
	SubtotalAmountCents   int64           `grove:"subtotal_amount_cents"    bson:"subtotal_amount_cents"`
	SubtotalCurrency      string          `grove:"subtotal_currency"        bson:"subtotal_currency"`
	TaxAmountCents        int64           `grove:"tax_amount_cents"         bson:"tax_amount_cents"`
	TaxCurrency           string          `grove:"tax_currency"             bson:"tax_currency"`
	TotalAmountCents      int64           `grove:"total_amount_cents"       bson:"total_amount_cents"`
	TotalCurrency         string          `grove:"total_currency"           bson:"total_currency"`
	LineItems             []lineItemModel `grove:"line_items"               bson:"line_items"`
	CreatedAt             time.Time       `grove:"created_at"               bson:"created_at"`
	UpdatedAt             time.Time       `grove:"updated_at"               bson:"updated_at"`
}

type lineItemModel struct {
	ID                string `bson:"id"`
	Number            int64  `bson:"number"`
	ProductCode       int    `bson:"product_code"`
	Description       string `bson:"description"`
	Quantity          int64  `bson:"quantity"`
	UnitPriceCents    int64  `bson:"unit_price_cents"`
	UnitPriceCurrency string `bson:"unit_price_currency"`
	AmountCents       int64  `bson:"amount_cents"`
	AmountCurrency    string `bson:"amount_currency"`
}

func toInvoiceModel(inv *invoice.Invoice) *invoiceModel {
	lines := make([]lineItemModel, len(inv.LineItems))
	for i, line := range inv.LineItems {
		lines[i] = lineItemModel{
			ID:                line.ID.String(),
			Number:            line.Number,
			ProductCode:       line.ProductCode,
			Description:       line.Description,
			Quantity:          line.Quantity,
			UnitPriceCents:    line.UnitPrice.Amount,
			UnitPriceCurrency: line.UnitPrice.Currency,
			AmountCents:       line.Amount.Amount,
			AmountCurrency:    line.Amount.Currency,
		}
	}

	return &invoiceModel{
		ID:                    inv.ID.String(),
		Number:                inv.Number,
		NumberValue:           docNumber(inv.Number),
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
		LineItems:             lines,
		CreatedAt:             inv.CreatedAt,
		UpdatedAt:             inv.UpdatedAt,
	}
}

func fromInvoiceModel(m *invoiceModel) (*invoice.Invoice, error) {
	invoiceID, err := id.ParseInvoiceID(m.ID)
	if err != nil {
		return nil, err
	}

	lines := make([]invoice.LineItem, len(m.LineItems))
	for i, lm := range m.LineItems {
		lineID, err := id.ParseLineItemID(lm.ID)
		if err != nil {
			return nil, err
		}
		lines[i] = invoice.LineItem{
			ID:          lineID,
			Number:      lm.Number,
			ProductCode: lm.ProductCode,
			Description: lm.Description,
			Quantity:    lm.Quantity,
			UnitPrice:   types.Money{Amount: lm.UnitPriceCents, Currency: lm.UnitPriceCurrency},
			Amount:      types.Money{Amount: lm.AmountCents, Currency: lm.AmountCurrency},
		}
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
		LineItems:     lines,
	}, nil
}
