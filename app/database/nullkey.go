package database

// nullKeySentinel stands in for an unspecified optional dimension in
// composite uniqueness keys. SQL treats NULL as distinct from every value
// including itself, which silently defeats unique indexes over nullable
// columns; every optional dimension is therefore normalized to this concrete
// sentinel before any comparison or store. Tags and saved items share these
// helpers.
const nullKeySentinel int64 = -1

// NullKey maps an optional identifier to its storage form.
func NullKey(id *int64) int64 {
	if id == nil {
		return nullKeySentinel
	}
	return *id
}

// NullKeyValue maps a stored key back to the optional-identifier form.
func NullKeyValue(key int64) *int64 {
	if key == nullKeySentinel {
		return nil
	}
	return &key
}
