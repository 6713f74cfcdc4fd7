package pricing

import "github.com/fjod/go_pizza/internal/domain"

// Selection is the set of options a customer picked for one product.
// Each category has its own type so that, for example, a cheese level on a drink cannot be expressed.
type Selection interface {
	fits(domain.Category) bool
	resolve() resolved
}

type resolved struct {
	size         domain.Size
	sizePinned   bool
	cheese       domain.CheeseOption
	cheesePinned bool
	wellDone     bool
	drinkSize    domain.Variant
}

// PizzaOptions applies to pizzas and pizza promotions.
// DefaultSize and DefaultCheese pin the option for bundles that include it for free.
type PizzaOptions struct {
	Size          domain.Size
	Cheese        domain.CheeseOption
	WellDone      bool
	DefaultSize   domain.Size
	DefaultCheese domain.CheeseOption
}

func (PizzaOptions) fits(c domain.Category) bool { return c.IsPizzaType() }

func (o PizzaOptions) resolve() resolved {
	r := resolved{size: o.Size, cheese: o.Cheese, wellDone: o.WellDone}
	if o.DefaultSize != "" {
		r.size, r.sizePinned = o.DefaultSize, true
	}
	if o.DefaultCheese != "" {
		r.cheese, r.cheesePinned = o.DefaultCheese, true
	}
	if r.size == "" {
		r.size = domain.SizeSmall
	}
	if r.cheese == "" {
		r.cheese = domain.CheeseNormal
	}
	return r
}

type PastaOptions struct {
	Size        domain.Size
	DefaultSize domain.Size
}

func (PastaOptions) fits(c domain.Category) bool { return c == domain.CategoryPasta }

func (o PastaOptions) resolve() resolved {
	return resolveSize(o.Size, o.DefaultSize)
}

type SaladOptions struct {
	Size        domain.Size
	DefaultSize domain.Size
}

func (SaladOptions) fits(c domain.Category) bool { return c == domain.CategorySalad }

func (o SaladOptions) resolve() resolved {
	return resolveSize(o.Size, o.DefaultSize)
}

// DrinkOptions selects the bottle volume; the volume is the price variant.
type DrinkOptions struct {
	Volume domain.Variant
}

func (DrinkOptions) fits(c domain.Category) bool { return c == domain.CategoryDrinks }

func (o DrinkOptions) resolve() resolved {
	v := o.Volume
	if v == "" {
		v = domain.VariantSmallDrink
	}
	return resolved{drinkSize: v}
}

type DessertOptions struct{}

func (DessertOptions) fits(c domain.Category) bool { return c == domain.CategoryDessert }
func (DessertOptions) resolve() resolved           { return resolved{} }

type DipOptions struct{}

func (DipOptions) fits(c domain.Category) bool { return c == domain.CategoryDips }
func (DipOptions) resolve() resolved           { return resolved{} }

func resolveSize(size, pinned domain.Size) resolved {
	if pinned != "" {
		return resolved{size: pinned, sizePinned: true}
	}
	if size == "" {
		size = domain.SizeSmall
	}
	return resolved{size: size}
}

func (r resolved) variant() domain.Variant {
	if r.drinkSize != "" {
		return r.drinkSize
	}
	if r.size == domain.SizeLarge {
		return domain.VariantLarge
	}
	return domain.VariantNormal
}
