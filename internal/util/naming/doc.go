// Package naming provides consistent logical identifiers for declared resources.
//
// Logical IDs are alphanumeric (underscores allowed) so they can be embedded
// in ${ID.Attr} substitution tokens. Display names such as "Dev VPC" are
// squeezed into IDs by dropping every other character.
package naming
