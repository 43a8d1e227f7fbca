// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package directory builds the voter listing used for auditing.

Every (date, voter) pair across today's document and the archive becomes
one row. Rows are sorted newest vote first, then by date and voter id so
that paging is stable:

	page, err := directory.List(current, archive, directory.Query{
		Page:     2,
		PageSize: 10,
		Date:     "2025-03-14",
	})

Page numbers below 1 become 1, page sizes below 1 become 10 and sizes
above 100 are capped. A malformed date filter returns ErrInvalidQuery.
The directory is read-only and never feeds back into counting.
*/
package directory
