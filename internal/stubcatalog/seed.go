package stubcatalog

import "github.com/ginzapet/storefront/internal/catalog"

// seedCategories returns the development dataset. Slugs are stable so local
// carts survive stub restarts.
func seedCategories() []catalog.Category {
	grooming := catalog.Category{ID: 1, Name: "Grooming", Slug: "grooming", Photo: "categories/grooming.png"}
	health := catalog.Category{ID: 2, Name: "Health Care", Slug: "health-care", Photo: "categories/health-care.png"}
	training := catalog.Category{ID: 3, Name: "Training", Slug: "training", Photo: "categories/training.png"}

	products := []catalog.Product{
		{
			ID: 1, Price: 150000, Stock: 12, Name: "Full Grooming Treatment", Slug: "full-grooming-treatment",
			IsPopular: true, Thumbnail: "products/full-grooming.png",
			About:    "Complete wash, trim, and nail care for cats and dogs.",
			Benefits: []catalog.Benefit{{ID: 1, Name: "Certified groomer"}, {ID: 2, Name: "Organic shampoo"}},
		},
		{
			ID: 2, Price: 100000, Stock: 20, Name: "Fur Trim & Brush", Slug: "fur-trim-brush",
			IsPopular: false, Thumbnail: "products/fur-trim.png",
			About: "Quick trim and deshedding brush session.",
		},
		{
			ID: 3, Price: 250000, Stock: 8, Name: "Home Vet Visit", Slug: "home-vet-visit",
			IsPopular: true, Thumbnail: "products/vet-visit.png",
			About:    "General health check at your door.",
			Benefits: []catalog.Benefit{{ID: 3, Name: "Licensed vet"}},
		},
		{
			ID: 4, Price: 175000, Stock: 15, Name: "Vaccination Package", Slug: "vaccination-package",
			IsPopular: false, Thumbnail: "products/vaccination.png",
			About: "Core vaccines with digital record.",
		},
		{
			ID: 5, Price: 200000, Stock: 10, Name: "Obedience Basics", Slug: "obedience-basics",
			IsPopular: true, Thumbnail: "products/obedience.png",
			About: "Five-session starter program for young dogs.",
		},
	}

	// Attach categories to products and products to categories.
	byCategory := map[int][]catalog.Product{
		grooming.ID: {products[0], products[1]},
		health.ID:   {products[2], products[3]},
		training.ID: {products[4]},
	}
	categories := []catalog.Category{grooming, health, training}
	for i := range categories {
		list := byCategory[categories[i].ID]
		shallow := categories[i]
		for j := range list {
			list[j].Category = &catalog.Category{
				ID: shallow.ID, Name: shallow.Name, Slug: shallow.Slug, Photo: shallow.Photo,
			}
		}
		categories[i].Products = list
		categories[i].ProductsCount = len(list)
		for _, product := range list {
			if product.IsPopular {
				categories[i].PopularProducts = append(categories[i].PopularProducts, product)
			}
		}
	}
	return categories
}
