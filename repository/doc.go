// Package repository runs entity queries on the transaction carried by a
// context and builds repositories from struct declarations.
//
// A repository is a struct embedding Base whose func fields are resolved
// when Create builds it:
//
//	type PersonRepository struct {
//		repository.Base[Person, int64]
//		FindByName func(ctx context.Context, name string) ([]Person, error)
//		Adults     func(ctx context.Context, age int) ([]Person, error) `query:"SELECT * FROM PERSON WHERE AGE >= ?"`
//	}
package repository
