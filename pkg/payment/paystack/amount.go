package paystack

// ToKobo converts whole naira to kobo. Paystack rejects zero amounts, so the
// result is never below 1 kobo.
func ToKobo(naira int64) int64 {
	kobo := naira * 100
	if kobo < 1 {
		return 1
	}
	return kobo
}

// ToNaira converts kobo to whole naira, dropping any fractional part.
func ToNaira(kobo int64) int64 {
	return kobo / 100
}
