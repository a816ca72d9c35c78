package gateway

import (
	"strconv"
	"strings"

	"github.com/devnazarchuk/sneakers-shop/internal/models"
)

// The gateway echoes at most ~500 characters of item metadata back on its
// webhook, so line items travel in a compact delimited form and never carry
// image URLs; those are merged back from the local catalog on arrival.
const (
	metaBudget  = 500
	maxTitleLen = 24
	itemSep     = "|"
	fieldSep    = "~"
)

// EncodeItemsMeta packs order items into the gateway metadata string. Items
// that do not fit the budget are dropped from the tail; the order total is
// carried separately so dropped lines never change what is charged.
func EncodeItemsMeta(items []models.OrderItem) string {
	var parts []string
	used := 0

	for _, item := range items {
		title := sanitizeMetaField(item.Title)

		if len(title) > maxTitleLen {
			title = title[:maxTitleLen]
		}

		part := strings.Join([]string{
			strconv.Itoa(item.ProductID),
			title,
			sanitizeMetaField(item.Brand),
			sanitizeMetaField(item.Size),
			sanitizeMetaField(item.Color),
			strconv.Itoa(item.Quantity),
			strconv.FormatFloat(item.Price, 'f', 2, 64),
		}, fieldSep)

		cost := len(part)

		if len(parts) > 0 {
			cost += len(itemSep)
		}

		if used+cost > metaBudget {
			break
		}

		parts = append(parts, part)
		used += cost
	}

	return strings.Join(parts, itemSep)
}

// DecodeItemsMeta reconstructs order items (minus images) from the metadata
// string. Malformed entries are skipped rather than failing the whole
// payload.
func DecodeItemsMeta(meta string) []models.OrderItem {
	if meta == "" {
		return nil
	}

	var items []models.OrderItem

	for _, part := range strings.Split(meta, itemSep) {
		fields := strings.Split(part, fieldSep)

		if len(fields) != 7 {
			continue
		}

		productID, err := strconv.Atoi(fields[0])

		if err != nil {
			continue
		}

		quantity, err := strconv.Atoi(fields[5])

		if err != nil || quantity <= 0 {
			continue
		}

		price, err := strconv.ParseFloat(fields[6], 64)

		if err != nil {
			continue
		}

		items = append(items, models.OrderItem{
			ProductID: productID,
			Title:     fields[1],
			Brand:     fields[2],
			Size:      fields[3],
			Color:     fields[4],
			Quantity:  quantity,
			Price:     price,
		})
	}

	return items
}

func sanitizeMetaField(s string) string {
	s = strings.ReplaceAll(s, itemSep, " ")
	s = strings.ReplaceAll(s, fieldSep, " ")
	return strings.TrimSpace(s)
}
