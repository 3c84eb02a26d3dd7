package cache

// Kind names a cacheable resource kind. Every cached read and every write
// path agrees on these, so a write never has to know which reads exist.
type Kind string

const (
	KindProducts      Kind = "products"
	KindProductViews  Kind = "productViews"
	KindSubscription  Kind = "subscription"
	KindCountries     Kind = "countries"
	KindCountryGroups Kind = "countryGroups"
)

// Tag is an invalidation label. Three namespaces exist: one per resource kind,
// one per owning user, and one per entity id.
type Tag string

// GlobalTag tags reads that depend on every row of a kind.
func GlobalTag(kind Kind) Tag {
	return Tag("global:" + string(kind))
}

// UserTag tags reads scoped to a single owning user.
func UserTag(userID string, kind Kind) Tag {
	return Tag("user:" + userID + "-" + string(kind))
}

// IDTag tags reads scoped to a single entity.
func IDTag(id string, kind Kind) Tag {
	return Tag("id:" + id + "-" + string(kind))
}
