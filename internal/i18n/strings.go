package i18n

var english = Dictionary{
	"auth.invalidCredentials":              "Invalid email or password",
	"auth.unknownError":                    "An unknown error occurred",
	"cart.empty":                           "Your cart is empty",
	"cart.mixedCurrencyError.title":        "Mixed Currencies in Cart",
	"cart.mixedCurrencyError.description":  "Your cart contains items in different currencies. Please remove items to proceed with only one currency.",
	"checkout.readyIn":                     "Ready in {minutes} minutes (approx. {time})",
	"checkout.readyForPickup":              "Ready for pickup",
	"checkout.estimatedDeliveryTime":       "Estimated delivery time",
	"checkout.deliveryNote":                "We'll send you an SMS when your food is on the way",
	"checkout.pickupNote":                  "We'll send you an SMS when your food is ready for pickup",
	"profile.orders.estimatedTime.readyIn": "Ready in {minutes} minutes",
	"profile.orders.status.pending":        "Pending",
	"profile.orders.status.preparing":      "Preparing",
	"profile.orders.status.ready":          "Ready for pickup",
	"profile.orders.status.inDelivery":     "In delivery",
	"profile.orders.status.delivered":      "Delivered",
	"profile.orders.status.completed":      "Completed",
}

var norwegian = Dictionary{
	"auth.invalidCredentials":              "Ugyldig e-post eller passord",
	"auth.unknownError":                    "En ukjent feil oppstod",
	"cart.empty":                           "Handlekurven er tom",
	"cart.mixedCurrencyError.title":        "Blandede valutaer i handlekurven",
	"cart.mixedCurrencyError.description":  "Handlekurven inneholder varer i ulike valutaer. Fjern varer slik at kun én valuta gjenstår.",
	"checkout.readyIn":                     "Klar om {minutes} minutter (ca. {time})",
	"checkout.readyForPickup":              "Klar for henting",
	"checkout.estimatedDeliveryTime":       "Estimert leveringstid",
	"checkout.deliveryNote":                "Vi sender deg en SMS når maten er på vei",
	"checkout.pickupNote":                  "Vi sender deg en SMS når maten er klar for henting",
	"profile.orders.estimatedTime.readyIn": "Klar om {minutes} minutter",
	"profile.orders.status.pending":        "Venter",
	"profile.orders.status.preparing":      "Tilberedes",
	"profile.orders.status.ready":          "Klar for henting",
	"profile.orders.status.inDelivery":     "Under levering",
	"profile.orders.status.delivered":      "Levert",
	"profile.orders.status.completed":      "Fullført",
}
