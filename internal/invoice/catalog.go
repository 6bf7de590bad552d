package invoice

// CatalogItem maps a product display name to its HSN code.
type CatalogItem struct {
	Name    string `json:"name" yaml:"name"`
	HSNCode string `json:"hsnCode" yaml:"hsnCode"`
}

// Catalog resolves product names for line selection. Lookups are advisory:
// a name missing from the catalog is still a valid free-text product.
type Catalog interface {
	Lookup(name string) (CatalogItem, bool)
	Items() []CatalogItem
}

// StaticCatalog is an immutable, ordered catalog.
type StaticCatalog struct {
	items  []CatalogItem
	byName map[string]CatalogItem
}

// NewStaticCatalog indexes items by name. Later duplicates are ignored.
func NewStaticCatalog(items []CatalogItem) *StaticCatalog {
	c := &StaticCatalog{byName: make(map[string]CatalogItem, len(items))}
	for _, item := range items {
		if _, dup := c.byName[item.Name]; dup {
			continue
		}
		c.byName[item.Name] = item
		c.items = append(c.items, item)
	}
	return c
}

// Lookup finds an item by exact name.
func (c *StaticCatalog) Lookup(name string) (CatalogItem, bool) {
	if c == nil {
		return CatalogItem{}, false
	}
	item, ok := c.byName[name]
	return item, ok
}

// Items returns a copy of the catalog in declaration order.
func (c *StaticCatalog) Items() []CatalogItem {
	if c == nil {
		return nil
	}
	out := make([]CatalogItem, len(c.items))
	copy(out, c.items)
	return out
}

// DefaultCatalog is the built-in product list.
var DefaultCatalog = NewStaticCatalog([]CatalogItem{
	{Name: "Laptop Computer", HSNCode: "8471"},
	{Name: "Mobile Phone", HSNCode: "8517"},
	{Name: "Tablet Device", HSNCode: "8471"},
	{Name: "Wireless Headphones", HSNCode: "8518"},
	{Name: "Smart Watch", HSNCode: "9102"},
	{Name: "External Hard Drive", HSNCode: "8471"},
	{Name: "Wireless Mouse", HSNCode: "8471"},
	{Name: "Bluetooth Speaker", HSNCode: "8518"},
	{Name: "USB Cable", HSNCode: "8544"},
	{Name: "Power Bank", HSNCode: "8507"},
})
