package checkout

import (
	"sort"

	"github.com/go-faster/jx"
)

// The gateway payloads are encoded with jx rather than encoding/json: field
// order stays deterministic and unset optional fields are omitted instead of
// serialized as null or empty strings.

// Encode writes the payment-order payload.
func (r *PaymentOrderRequest) Encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("operation")
	e.Str(string(r.Operation))
	e.FieldStart("currency")
	e.Str(r.Currency)
	e.FieldStart("amount")
	e.Int64(r.Amount.Int64())
	e.FieldStart("vatAmount")
	e.Int64(r.VatAmount.Int64())
	e.FieldStart("description")
	e.Str(r.Description)
	e.FieldStart("userAgent")
	e.Str(r.UserAgent)
	e.FieldStart("language")
	e.Str(r.Language)
	e.FieldStart("generatePaymentToken")
	e.Bool(r.GeneratePaymentToken)

	e.FieldStart("urls")
	r.URLs.Encode(e)

	e.FieldStart("payeeInfo")
	e.ObjStart()
	e.FieldStart("payeeId")
	e.Str(r.PayeeInfo.PayeeID)
	e.FieldStart("payeeReference")
	e.Str(r.PayeeInfo.PayeeReference)
	e.ObjEnd()

	if r.Payer != nil {
		e.FieldStart("payer")
		e.ObjStart()
		e.FieldStart("consumerProfileRef")
		e.Str(r.Payer.ConsumerProfileRef)
		e.ObjEnd()
	}

	if len(r.MetaData) > 0 {
		e.FieldStart("metaData")
		e.ObjStart()
		for _, k := range sortedKeys(r.MetaData) {
			e.FieldStart(k)
			e.Str(r.MetaData[k])
		}
		e.ObjEnd()
	}

	e.FieldStart("orderItems")
	encodeItems(e, r.OrderItems)
	e.ObjEnd()
}

// MarshalJSON lets the request pass through encoding/json call sites.
func (r *PaymentOrderRequest) MarshalJSON() ([]byte, error) {
	var e jx.Encoder
	r.Encode(&e)
	return e.Bytes(), nil
}

// Encode writes the merchant URL set, omitting unset fields.
func (u *MerchantURLs) Encode(e *jx.Encoder) {
	e.ObjStart()
	if len(u.HostURLs) > 0 {
		e.FieldStart("hostUrls")
		e.ArrStart()
		for _, h := range u.HostURLs {
			e.Str(h)
		}
		e.ArrEnd()
	}
	field := func(name, value string) {
		if value != "" {
			e.FieldStart(name)
			e.Str(value)
		}
	}
	field("completeUrl", u.CompleteURL)
	field("termsOfServiceUrl", u.TermsOfServiceURL)
	field("cancelUrl", u.CancelURL)
	field("paymentUrl", u.PaymentURL)
	field("callbackUrl", u.CallbackURL)
	field("logoUrl", u.LogoURL)
	e.ObjEnd()
}

// Encode writes one order item.
func (i *OrderItem) Encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("reference")
	e.Str(i.Reference)
	e.FieldStart("name")
	e.Str(i.Name)
	e.FieldStart("type")
	e.Str(string(i.Type))
	e.FieldStart("class")
	e.Str(i.Class)
	e.FieldStart("quantity")
	e.Int(i.Quantity)
	e.FieldStart("quantityUnit")
	e.Str(i.QuantityUnit)
	e.FieldStart("unitPrice")
	e.Int64(i.UnitPrice.Int64())
	e.FieldStart("amount")
	e.Int64(i.Amount.Int64())
	e.FieldStart("vatAmount")
	e.Int64(i.VatAmount.Int64())
	e.FieldStart("vatPercent")
	e.Int(i.VatPercent)
	e.FieldStart("discountPrice")
	e.Int64(i.DiscountPrice.Int64())
	e.FieldStart("discountDescription")
	e.Str(i.DiscountDescription)
	e.FieldStart("imageUrl")
	e.Str(i.ImageURL)
	e.FieldStart("itemUrl")
	e.Str(i.ItemURL)
	e.FieldStart("description")
	e.Str(i.Description)
	e.ObjEnd()
}

// Encode writes the capture payload.
func (r *CaptureRequest) Encode(e *jx.Encoder) {
	encodeSettlement(e, string(r.Operation), r.Amount.Int64(), r.VatAmount.Int64(), r.Description, r.PayeeReference, r.OrderItems)
}

// MarshalJSON implements json.Marshaler.
func (r *CaptureRequest) MarshalJSON() ([]byte, error) {
	var e jx.Encoder
	r.Encode(&e)
	return e.Bytes(), nil
}

// Encode writes the reversal payload.
func (r *ReversalRequest) Encode(e *jx.Encoder) {
	encodeSettlement(e, string(r.Operation), r.Amount.Int64(), r.VatAmount.Int64(), r.Description, r.PayeeReference, r.OrderItems)
}

// MarshalJSON implements json.Marshaler.
func (r *ReversalRequest) MarshalJSON() ([]byte, error) {
	var e jx.Encoder
	r.Encode(&e)
	return e.Bytes(), nil
}

func encodeSettlement(e *jx.Encoder, operation string, amount, vat int64, description, payeeRef string, items []OrderItem) {
	e.ObjStart()
	e.FieldStart("operation")
	e.Str(operation)
	e.FieldStart("amount")
	e.Int64(amount)
	e.FieldStart("vatAmount")
	e.Int64(vat)
	e.FieldStart("description")
	e.Str(description)
	e.FieldStart("payeeReference")
	e.Str(payeeRef)
	e.FieldStart("orderItems")
	encodeItems(e, items)
	e.ObjEnd()
}

// Encode writes the cancel payload.
func (r *CancelRequest) Encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("operation")
	e.Str(string(r.Operation))
	e.FieldStart("description")
	e.Str(r.Description)
	e.FieldStart("payeeReference")
	e.Str(r.PayeeReference)
	e.ObjEnd()
}

// MarshalJSON implements json.Marshaler.
func (r *CancelRequest) MarshalJSON() ([]byte, error) {
	var e jx.Encoder
	r.Encode(&e)
	return e.Bytes(), nil
}

// Encode writes the abort payload.
func (r *AbortRequest) Encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("operation")
	e.Str(string(r.Operation))
	e.FieldStart("abortReason")
	e.Str(r.AbortReason)
	e.FieldStart("payeeReference")
	e.Str(r.PayeeReference)
	e.ObjEnd()
}

// MarshalJSON implements json.Marshaler.
func (r *AbortRequest) MarshalJSON() ([]byte, error) {
	var e jx.Encoder
	r.Encode(&e)
	return e.Bytes(), nil
}

// Encode writes the update payload.
func (r *UpdateRequest) Encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("operation")
	e.Str(string(r.Operation))
	e.FieldStart("amount")
	e.Int64(r.Amount.Int64())
	e.FieldStart("vatAmount")
	e.Int64(r.VatAmount.Int64())
	e.ObjEnd()
}

// MarshalJSON implements json.Marshaler.
func (r *UpdateRequest) MarshalJSON() ([]byte, error) {
	var e jx.Encoder
	r.Encode(&e)
	return e.Bytes(), nil
}

// Encode writes the consumer-session payload.
func (r *ConsumerSessionRequest) Encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("operation")
	e.Str(string(r.Operation))
	e.FieldStart("language")
	e.Str(r.Language)
	e.FieldStart("consumerCountryCode")
	e.Str(r.ConsumerCountryCode)
	if r.Email != "" {
		e.FieldStart("email")
		e.Str(r.Email)
	}
	if r.Msisdn != "" {
		e.FieldStart("msisdn")
		e.Str(r.Msisdn)
	}
	if r.NationalIdentifier != nil {
		e.FieldStart("nationalIdentifier")
		e.ObjStart()
		e.FieldStart("socialSecurityNumber")
		e.Str(r.NationalIdentifier.SocialSecurityNumber)
		e.FieldStart("countryCode")
		e.Str(r.NationalIdentifier.CountryCode)
		e.ObjEnd()
	}
	e.ObjEnd()
}

// MarshalJSON implements json.Marshaler.
func (r *ConsumerSessionRequest) MarshalJSON() ([]byte, error) {
	var e jx.Encoder
	r.Encode(&e)
	return e.Bytes(), nil
}

func encodeItems(e *jx.Encoder, items []OrderItem) {
	e.ArrStart()
	for idx := range items {
		items[idx].Encode(e)
	}
	e.ArrEnd()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
