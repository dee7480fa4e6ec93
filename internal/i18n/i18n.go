// Package i18n holds the customer-facing message catalog. Message keys are the
// English texts; Bengali is the default storefront language.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message keys. Positional verbs keep argument order stable across languages.
const (
	MsgNoItems          = "Please add at least one product"
	MsgNameRequired     = "Please enter your name"
	MsgDistrictMissing  = "Please select a delivery area"
	MsgAddressRequired  = "Please enter your address"
	MsgPhoneRequired    = "Please enter your mobile number"
	MsgPhoneInvalid     = "Enter a valid mobile number (e.g. %s)"
	MsgSizeRequired     = "Select %[2]s for %[1]s"
	MsgQuantityMin      = "Quantity of %s must be at least 1"
	MsgStockExceeded    = "Only %[2]d of %[1]s left in stock"
	MsgSubmitFailed     = "Failed to create the order. Please try again."
	MsgNetwork          = "Could not reach the store. Check your connection and try again."
	MsgForbiddenHint    = " (403: the API address may be wrong or the server is blocking the request.)"
	MsgProductNotFound  = "Product not found"
	MsgNoProduct        = "No product selected"
	MsgOutOfStock       = "This product is out of stock"
	MsgLastItem         = "An order needs at least one product"
	MsgBusy             = "Your order is already being submitted"
	MsgAlreadySubmitted = "This order has already been placed"
	MsgReceiptFailed    = "Could not generate the receipt"
)

var bengali = map[string]string{
	MsgNoItems:          "অনুগ্রহ করে অন্তত একটি পণ্য যোগ করুন",
	MsgNameRequired:     "অনুগ্রহ করে আপনার নাম লিখুন",
	MsgDistrictMissing:  "অনুগ্রহ করে ডেলিভারি এলাকা নির্বাচন করুন",
	MsgAddressRequired:  "অনুগ্রহ করে আপনার ঠিকানা লিখুন",
	MsgPhoneRequired:    "অনুগ্রহ করে আপনার মোবাইল নাম্বার লিখুন",
	MsgPhoneInvalid:     "সঠিক মোবাইল নাম্বার লিখুন (যেমন: %s)",
	MsgSizeRequired:     "%[1]s এর জন্য %[2]s নির্বাচন করুন",
	MsgQuantityMin:      "%s এর পরিমাণ কমপক্ষে 1 হতে হবে",
	MsgStockExceeded:    "%[1]s এর জন্য স্টকে শুধুমাত্র %[2]dটি আইটেম রয়েছে",
	MsgSubmitFailed:     "অর্ডার তৈরি করতে ব্যর্থ হয়েছে। অনুগ্রহ করে আবার চেষ্টা করুন।",
	MsgNetwork:          "সার্ভারের সাথে সংযোগ করা যায়নি। ইন্টারনেট সংযোগ পরীক্ষা করে আবার চেষ্টা করুন।",
	MsgForbiddenHint:    " (403: সম্ভবত API ঠিকানা ভুল বা সার্ভার ব্লক করছে।)",
	MsgProductNotFound:  "পণ্য পাওয়া যায়নি",
	MsgNoProduct:        "পণ্য নির্বাচন করা হয়নি",
	MsgOutOfStock:       "পণ্যটি স্টকে নেই",
	MsgLastItem:         "অর্ডারে অন্তত একটি পণ্য থাকতে হবে",
	MsgBusy:             "আপনার অর্ডার জমা দেওয়া হচ্ছে",
	MsgAlreadySubmitted: "এই অর্ডারটি ইতিমধ্যে সম্পন্ন হয়েছে",
	MsgReceiptFailed:    "রসিদ তৈরি করা যায়নি",
}

var supported = []language.Tag{language.Bengali, language.English}

var matcher = language.NewMatcher(supported)

func init() {
	for key, text := range bengali {
		if err := message.SetString(language.Bengali, key, text); err != nil {
			panic(err)
		}
	}
}

// Printer returns a printer for the best supported match of locale. Unknown or
// empty locales get Bengali.
func Printer(locale string) *message.Printer {
	return message.NewPrinter(Match(locale))
}

// Match resolves a locale string or Accept-Language value to a supported tag.
func Match(locale string) language.Tag {
	if locale == "" {
		return language.Bengali
	}
	tags, _, err := language.ParseAcceptLanguage(locale)
	if err != nil || len(tags) == 0 {
		return language.Bengali
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return language.Bengali
	}
	return supported[idx]
}
