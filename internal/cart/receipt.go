package cart

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidReceipt = errors.New("invalid receipt")

// Receipt is the confirmation of a simulated checkout. No payment happens;
// the receipt only records what the cart held.
type Receipt struct {
	ID       string        `json:"id"`
	Lines    []ReceiptLine `json:"lines"`
	Items    int           `json:"items"`
	Total    int64         `json:"total"`
	IssuedAt time.Time     `json:"issued_at"`
}

type ReceiptLine struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Qty       int    `json:"qty"`
	Price     int64  `json:"price"`
	Subtotal  int64  `json:"subtotal"`
}

func NewReceipt(lines []Line, totals Totals, now time.Time) Receipt {
	r := Receipt{
		ID:       "r_" + uuid.NewString(),
		Lines:    make([]ReceiptLine, 0, len(lines)),
		Items:    totals.Items,
		Total:    totals.Price,
		IssuedAt: now.UTC(),
	}
	for _, l := range lines {
		r.Lines = append(r.Lines, ReceiptLine{
			ProductID: l.Product.ID,
			Name:      l.Product.Name,
			Qty:       l.Qty,
			Price:     l.Product.Price,
			Subtotal:  l.Subtotal,
		})
	}
	return r
}

// ReceiptSigner issues and verifies HS256 receipt tokens.
type ReceiptSigner struct {
	secret []byte
	issuer string
}

func NewReceiptSigner(secret string) *ReceiptSigner {
	return &ReceiptSigner{
		secret: []byte(secret),
		issuer: "ministore-storefront",
	}
}

type receiptClaims struct {
	Receipt Receipt `json:"receipt"`
	jwt.RegisteredClaims
}

func (s *ReceiptSigner) Sign(r Receipt) (string, error) {
	claims := receiptClaims{
		Receipt: r,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       r.ID,
			Issuer:   s.issuer,
			IssuedAt: jwt.NewNumericDate(r.IssuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *ReceiptSigner) Verify(tokenStr string) (Receipt, error) {
	var c receiptClaims

	token, err := jwt.ParseWithClaims(tokenStr, &c, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer))
	if err != nil || token == nil || !token.Valid {
		return Receipt{}, ErrInvalidReceipt
	}
	if c.Receipt.ID == "" || c.ID != c.Receipt.ID {
		return Receipt{}, ErrInvalidReceipt
	}

	return c.Receipt, nil
}
