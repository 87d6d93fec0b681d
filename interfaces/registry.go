package interfaces

// DomainRegistry is the read-only set of domain names known to the box,
// grouped by domain type (for example "domainname", "tor", "pagekite").
type DomainRegistry interface {
	// Domains returns a snapshot of domain type to domain names.
	Domains() map[string][]string

	// Contains reports whether domain is registered under any type.
	Contains(domain string) bool
}
