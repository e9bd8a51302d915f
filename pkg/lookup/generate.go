package lookup

//go:generate go run go.uber.org/mock/mockgen -package mocks -destination mocks/mock_lookup.go github.com/kasuboski/showmatcher/pkg/lookup Lookup
