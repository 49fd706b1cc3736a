package parser

import (
	"encoding/xml"
	"io"
	"os"
	"strconv"

	"order-importer/feature/orders/models"

	"go.uber.org/zap"
)

// Parser converts an order XML document into a sequence of
// models.ImportOrder. It never fails hard: a missing file, a malformed
// document or a malformed individual order degrade to an empty or
// shorter sequence with a logged diagnostic, so callers can treat an
// empty result as "nothing to do".
type Parser struct {
	logger *zap.Logger
}

// NewParser creates a new document parser.
func NewParser(logger *zap.Logger) *Parser {
	return &Parser{logger: logger}
}

// xmlDocument matches any root element holding repeated <order> children.
type xmlDocument struct {
	XMLName xml.Name
	Orders  []xmlOrder `xml:"order"`
}

type xmlOrder struct {
	No       string       `xml:"no"`
	RegDate  string       `xml:"reg_date"`
	User     *xmlUser     `xml:"user"`
	Products []xmlProduct `xml:"product"`
}

type xmlUser struct {
	FIO      string  `xml:"fio"`
	Email    string  `xml:"email"`
	Password *string `xml:"password"`
}

type xmlProduct struct {
	Name        string  `xml:"name"`
	Price       string  `xml:"price"`
	Description *string `xml:"description"`
	Quantity    string  `xml:"quantity"`
}

// ParseFile reads and parses the document at path.
func (p *Parser) ParseFile(path string) []models.ImportOrder {
	f, err := os.Open(path)
	if err != nil {
		p.logger.Warn("Order document not found", zap.String("path", path), zap.Error(err))
		return []models.ImportOrder{}
	}
	defer f.Close()

	return p.Parse(f, path)
}

// Parse decodes an order document from r. The source string is only
// used for diagnostics.
func (p *Parser) Parse(r io.Reader, source string) []models.ImportOrder {
	var doc xmlDocument
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		p.logger.Warn("Failed to decode order document", zap.String("source", source), zap.Error(err))
		return []models.ImportOrder{}
	}

	if len(doc.Orders) == 0 {
		p.logger.Warn("Order document contains no order elements", zap.String("source", source))
		return []models.ImportOrder{}
	}

	orders := make([]models.ImportOrder, 0, len(doc.Orders))
	for i, elem := range doc.Orders {
		order, reason := p.buildOrder(elem)
		if reason != "" {
			p.logger.Warn("Skipping malformed order",
				zap.Int("position", i),
				zap.String("no", elem.No),
				zap.String("reason", reason),
			)
			continue
		}
		orders = append(orders, order)
	}

	return orders
}

// buildOrder coerces one <order> element. It returns a non-empty reason
// when the element must be skipped.
func (p *Parser) buildOrder(elem xmlOrder) (models.ImportOrder, string) {
	if elem.User == nil {
		return models.ImportOrder{}, "missing user element"
	}
	if len(elem.Products) == 0 {
		return models.ImportOrder{}, "no product elements"
	}

	no, err := strconv.Atoi(elem.No)
	if err != nil {
		return models.ImportOrder{}, "non-numeric order no"
	}

	user := models.ImportUser{
		Name:  elem.User.FIO,
		Email: elem.User.Email,
	}
	if elem.User.Password != nil {
		user.Password = *elem.User.Password
	}

	items := make([]models.ImportItem, 0, len(elem.Products))
	for _, pe := range elem.Products {
		price, err := strconv.ParseFloat(pe.Price, 64)
		if err != nil {
			return models.ImportOrder{}, "non-numeric product price"
		}
		if price < 0 {
			return models.ImportOrder{}, "negative product price"
		}

		quantity, err := strconv.Atoi(pe.Quantity)
		if err != nil {
			return models.ImportOrder{}, "non-numeric quantity"
		}
		if quantity < 1 {
			return models.ImportOrder{}, "quantity must be positive"
		}

		item := models.ImportItem{
			Name:     pe.Name,
			Price:    price,
			Quantity: quantity,
		}
		if pe.Description != nil {
			item.Description = *pe.Description
		}
		items = append(items, item)
	}

	// The registration date stays a string here. Validating it is the
	// importer's job, where a bad date fails the whole batch.
	return models.ImportOrder{
		OrderID: no,
		RegDate: elem.RegDate,
		User:    user,
		Items:   items,
	}, ""
}
