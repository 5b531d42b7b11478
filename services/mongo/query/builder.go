package query

import (
	"go.mongodb.org/mongo-driver/bson"
)

type Builder struct {
	filter bson.M
}

func NewBuilder() *Builder {
	return &Builder{filter: bson.M{}}
}

func (b *Builder) Where(key string, value interface{}) *Builder {
	b.filter[key] = value
	return b
}

func (b *Builder) WhereIn(key string, values []interface{}) *Builder {
	b.filter[key] = bson.M{"$in": values}
	return b
}

func (b *Builder) WhereExists(key string) *Builder {
	b.filter[key] = bson.M{"$exists": true}
	return b
}

// WhereNotExists scopes a filter to documents missing the key. Every live
// read uses it on deletedAt, so tombstones stay out of all result sets.
func (b *Builder) WhereNotExists(key string) *Builder {
	b.filter[key] = bson.M{"$exists": false}
	return b
}

func (b *Builder) Build() bson.M {
	return b.filter
}
