// Package billing implements SES settlement: turning worked hours and a banded
// rate schedule into excess, shortage, subtotal, tax and total amounts.
//
// Every function in this package is pure. Monetary amounts are whole yen held
// in int64; hours and effort fractions are decimals. Each amount derived from
// a fractional rate x time product is truncated toward zero at the point it is
// derived, and tax is applied once to an aggregate subtotal, never per line.
package billing
