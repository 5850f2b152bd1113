package services

import (
	"strings"
)

// Lang is a supported response language.
type Lang string

const (
	LangArabic  Lang = "ar"
	LangEnglish Lang = "en"
)

// ParseLang picks the first supported language from an Accept-Language
// header, falling back to def.
func ParseLang(header string, def Lang) Lang {
	for _, part := range strings.Split(header, ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		tag = strings.ToLower(strings.SplitN(tag, "-", 2)[0])
		switch Lang(tag) {
		case LangArabic, LangEnglish:
			return Lang(tag)
		}
	}
	if def == "" {
		return LangArabic
	}
	return def
}

var translations = map[string]map[Lang]string{
	"timeline.CREATED": {
		LangArabic:  "تم إنشاء الطلب",
		LangEnglish: "Order placed",
	},
	"timeline.PENDING": {
		LangArabic:  "الطلب قيد الانتظار",
		LangEnglish: "Order is pending",
	},
	"timeline.CONFIRMED": {
		LangArabic:  "تم تأكيد الطلب",
		LangEnglish: "Order confirmed",
	},
	"timeline.PROCESSING": {
		LangArabic:  "جاري تجهيز الطلب",
		LangEnglish: "Order is being prepared",
	},
	"timeline.SHIPPED": {
		LangArabic:  "تم شحن الطلب",
		LangEnglish: "Order shipped",
	},
	"timeline.DELIVERED": {
		LangArabic:  "تم توصيل الطلب",
		LangEnglish: "Order delivered",
	},
	"timeline.CANCELLED": {
		LangArabic:  "تم إلغاء الطلب",
		LangEnglish: "Order cancelled",
	},
	"timeline.REFUNDED": {
		LangArabic:  "تم رد المبلغ",
		LangEnglish: "Order refunded",
	},

	"message.order_cancelled": {
		LangArabic:  "تم إلغاء الطلب بنجاح",
		LangEnglish: "Order cancelled successfully",
	},

	"error.EMPTY_CART": {
		LangArabic:  "سلة التسوق فارغة",
		LangEnglish: "Your cart is empty",
	},
	"error.ADDRESS_NOT_FOUND": {
		LangArabic:  "العنوان غير موجود",
		LangEnglish: "Address not found",
	},
	"error.INSUFFICIENT_STOCK": {
		LangArabic:  "الكمية المتاحة غير كافية للمنتج: {product}",
		LangEnglish: "Insufficient stock for {product}",
	},
	"error.STOCK_CONFLICT": {
		LangArabic:  "نفدت الكمية أثناء إتمام الطلب للمنتج: {product}، حاول مرة أخرى",
		LangEnglish: "{product} sold out while placing your order, please retry",
	},
	"error.PRODUCT_UNAVAILABLE": {
		LangArabic:  "المنتج غير متاح: {product}",
		LangEnglish: "{product} is no longer available",
	},
	"error.INVALID_COUPON": {
		LangArabic:  "كود الخصم غير صالح أو منتهي",
		LangEnglish: "Invalid or expired coupon",
	},
	"error.MIN_ORDER_NOT_MET": {
		LangArabic:  "قيمة الطلب أقل من الحد الأدنى لاستخدام الكوبون",
		LangEnglish: "Order total is below the coupon minimum",
	},
	"error.COUPON_EXHAUSTED": {
		LangArabic:  "تم استنفاد عدد مرات استخدام الكوبون",
		LangEnglish: "Coupon usage limit reached",
	},
	"error.COUPON_CONFLICT": {
		LangArabic:  "تم استخدام آخر رصيد للكوبون للتو، حاول مرة أخرى",
		LangEnglish: "Coupon was just used up, please retry",
	},
	"error.ORDER_NOT_FOUND": {
		LangArabic:  "الطلب غير موجود",
		LangEnglish: "Order not found",
	},
	"error.NOT_CANCELLABLE": {
		LangArabic:  "لا يمكن إلغاء هذا الطلب",
		LangEnglish: "This order can no longer be cancelled",
	},
	"error.INVALID_TRANSITION": {
		LangArabic:  "لا يمكن تغيير حالة الطلب بهذا الشكل",
		LangEnglish: "Order status change is not allowed",
	},
	"error.INVALID_STATUS": {
		LangArabic:  "قيمة الحالة غير صحيحة",
		LangEnglish: "Unknown status value",
	},
	"error.INVALID_PAYMENT_METHOD": {
		LangArabic:  "طريقة الدفع غير مدعومة",
		LangEnglish: "Unsupported payment method",
	},
	"error.EMPTY_UPDATE": {
		LangArabic:  "لا توجد بيانات للتحديث",
		LangEnglish: "No fields to update",
	},
	"error.INTERNAL": {
		LangArabic:  "حدث خطأ غير متوقع",
		LangEnglish: "Internal server error",
	},
}

// Describe returns the localized text for key. Unknown languages fall back to
// Arabic, unknown keys to the key itself.
func Describe(key string, lang Lang) string {
	entry, ok := translations[key]
	if !ok {
		return key
	}
	if text, ok := entry[lang]; ok {
		return text
	}
	return entry[LangArabic]
}
