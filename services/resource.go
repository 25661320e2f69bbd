package services

import "fmt"

// The engine never reads or writes the business entity behind a
// section; it only carries the (resourceType, resourceId) pair. The
// registry below names the collaborators that own each resource type so
// an unknown tag is caught when sections are materialized instead of
// surfacing later as a dangling pointer.

// ResourceOwner describes the collaborator that owns a resource type.
type ResourceOwner struct {
	Name string
}

var resourceRegistry = map[string]ResourceOwner{
	"bank_details":        {Name: "finance records"},
	"company_information": {Name: "operator registry"},
	"hr_records":          {Name: "personnel records"},
	"warehouse_facility":  {Name: "facility registry"},
	"insurance_policy":    {Name: "insurance records"},
	"storage_license":     {Name: "licensing records"},
}

// RegisterResourceType adds a resource type to the registry. Intended
// for wiring additional collaborators at startup.
func RegisterResourceType(tag, ownerName string) {
	resourceRegistry[tag] = ResourceOwner{Name: ownerName}
}

// KnownResourceType reports whether the tag has a registered owner.
func KnownResourceType(tag string) bool {
	_, ok := resourceRegistry[tag]
	return ok
}

// ResourceOwnerFor returns the owning collaborator for a resource type.
func ResourceOwnerFor(tag string) (ResourceOwner, error) {
	owner, ok := resourceRegistry[tag]
	if !ok {
		return ResourceOwner{}, fmt.Errorf("unregistered resource type %q", tag)
	}
	return owner, nil
}
