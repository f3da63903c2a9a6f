package cart

import (
	"strings"

	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
)

// Encode serializes the cart to the JSON array form stored in the
// shopping_cart cookie. The shape matches what browser clients persisted:
// [{"id":...,"title":...,"price":...,"quantity":...,"thumbnail":...}].
// Prices are written with two decimal places, same as the NUMERIC columns.
func Encode(c *Cart) []byte {
	var e jx.Encoder
	e.ArrStart()
	for _, it := range c.items {
		e.ObjStart()
		e.FieldStart("id")
		e.Str(it.ID)
		e.FieldStart("title")
		e.Str(it.Title)
		e.FieldStart("price")
		e.RawStr(it.Price.StringFixed(2))
		e.FieldStart("quantity")
		e.Int(it.Quantity)
		e.FieldStart("thumbnail")
		e.Str(it.Thumbnail)
		e.ObjEnd()
	}
	e.ArrEnd()
	return e.Bytes()
}

// Decode deserializes a cart blob. Malformed input of any kind fails soft to
// an empty cart: a corrupt cookie must never break the session that carries
// it. Duplicate IDs in the input are merged to restore the cart invariant.
func Decode(data []byte) *Cart {
	c := New()
	if len(data) == 0 {
		return c
	}

	d := jx.DecodeBytes(data)
	err := d.Arr(func(d *jx.Decoder) error {
		var it Item
		if err := d.Obj(func(d *jx.Decoder, key string) error {
			var err error
			switch key {
			case "id":
				it.ID, err = d.Str()
			case "title":
				it.Title, err = d.Str()
			case "price":
				it.Price, err = decodePrice(d)
			case "quantity":
				it.Quantity, err = d.Int()
			case "thumbnail":
				it.Thumbnail, err = d.Str()
			default:
				err = d.Skip()
			}
			return err
		}); err != nil {
			return err
		}
		c.insert(it)
		return nil
	})
	if err != nil {
		return New()
	}
	return c
}

// decodePrice accepts both JSON numbers and string-encoded numbers, since
// older clients serialized prices either way.
func decodePrice(d *jx.Decoder) (decimal.Decimal, error) {
	n, err := d.Num()
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(strings.Trim(string(n), `"`))
}
