package gateway

import (
	"testing"

	"github.com/devnazarchuk/sneakers-shop/internal/models"
)

func TestEncodeDecodeItemsMeta(t *testing.T) {
	items := []models.OrderItem{
		{ProductID: 7, Title: "Air Jordan 1 Mid", Brand: "Nike", Size: "43", Color: "Chicago", Quantity: 2, Price: 139.99},
		{ProductID: 12, Title: "Gel-Kayano 14", Brand: "Asics", Size: "42", Color: "Cream", Quantity: 1, Price: 160.00},
	}

	meta := EncodeItemsMeta(items)

	if len(meta) > 500 {
		t.Fatalf("meta length %d exceeds the 500-char budget", len(meta))
	}

	decoded := DecodeItemsMeta(meta)

	if len(decoded) != 2 {
		t.Fatalf("decoded %d items, want 2", len(decoded))
	}

	for i, item := range decoded {
		if item.ProductID != items[i].ProductID ||
			item.Title != items[i].Title ||
			item.Brand != items[i].Brand ||
			item.Size != items[i].Size ||
			item.Color != items[i].Color ||
			item.Quantity != items[i].Quantity ||
			item.Price != items[i].Price {
			t.Errorf("item %d round-tripped as %+v, want %+v", i, item, items[i])
		}
		if len(item.Images) != 0 {
			t.Errorf("item %d carried images through the gateway", i)
		}
	}
}

func TestEncodeItemsMetaRespectsBudget(t *testing.T) {
	var items []models.OrderItem

	for i := 0; i < 40; i++ {
		items = append(items, models.OrderItem{
			ProductID: i,
			Title:     "Extremely Long Limited Edition Collaboration Sneaker Name",
			Brand:     "Brand",
			Size:      "44",
			Color:     "Multicolor",
			Quantity:  1,
			Price:     99.99,
		})
	}

	meta := EncodeItemsMeta(items)

	if len(meta) > 500 {
		t.Fatalf("meta length %d exceeds the 500-char budget", len(meta))
	}

	decoded := DecodeItemsMeta(meta)

	if len(decoded) == 0 {
		t.Fatal("budget truncation dropped every item")
	}
	if len(decoded) == len(items) {
		t.Error("40 long items cannot all fit the budget; expected tail truncation")
	}
}

func TestEncodeItemsMetaSanitizesSeparators(t *testing.T) {
	items := []models.OrderItem{
		{ProductID: 1, Title: "Weird|Name~Here", Brand: "B", Size: "41", Color: "Red", Quantity: 1, Price: 10},
	}

	decoded := DecodeItemsMeta(EncodeItemsMeta(items))

	if len(decoded) != 1 {
		t.Fatalf("decoded %d items, want 1", len(decoded))
	}
	if decoded[0].ProductID != 1 || decoded[0].Quantity != 1 {
		t.Errorf("separator characters in fields corrupted the entry: %+v", decoded[0])
	}
}

func TestParseWebhookEvent(t *testing.T) {
	body := []byte(`{"type":"checkout.session.completed","session_id":"cs_1","amount":130.90,"currency":"eur","items_meta":"1~Shoe~Nike~42~Black~1~110.00"}`)

	event, err := ParseWebhookEvent(body)

	if err != nil {
		t.Fatalf("ParseWebhookEvent: %v", err)
	}
	if !event.Succeeded() {
		t.Error("completed event should report success")
	}
	if event.SessionID != "cs_1" {
		t.Errorf("session = %s, want cs_1", event.SessionID)
	}
}

func TestParseWebhookEventRejectsBadPayloads(t *testing.T) {
	cases := []string{
		`{not json`,
		`{"type":"checkout.session.completed"}`,
		`{"type":"something.else","session_id":"cs_1"}`,
	}

	for _, body := range cases {
		if _, err := ParseWebhookEvent([]byte(body)); err == nil {
			t.Errorf("ParseWebhookEvent accepted %q", body)
		}
	}
}
