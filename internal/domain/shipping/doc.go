// Package shipping contains the read-only records fetched from the shipping platform:
// orders with their line items and addresses, and purchased labels.
package shipping
