// The [jongo] package lets you query MongoDB with shell-like template strings and get typed Go values back.
//
// # Query Templates
//
// Queries are written as text with positional '#' markers, for example
//
//	friends.FindOne("{name:#, age:{$gt:#}}", "Alice", 18)
//
// Each marker is replaced by the literal form of its parameter: strings are quoted, ObjectIDs become
// {"$oid":...}, times become {"$date":...}, structs are marshalled to documents. The text may use
// unquoted keys, single quotes and shell constructors such as ObjectId('...') or /regex/i.
// A '#' inside a quoted string is not a marker.
//
// Templates are parsed once per [Collection] and cached. See [github.com/jongo-go/jongo/pkg/query].
//
// # Typed Results
//
// Go methods cannot take type parameters, so result types are chosen by the terminal functions
// [One], [All], [Iter] and [Distinct]:
//
//	f, err := jongo.One[Friend](ctx, friends.FindOne("{name:#}", "Alice"))
//	it, err := jongo.Iter[Friend](ctx, friends.Find("{age:{$gte:#}}", 18).Sort("{name:1}").Limit(10))
//
// Primitive result types such as string, int32 or primitive.ObjectID are passed through as the
// driver returned them. Structs, maps and documents are unmarshalled with the configured
// [marshal.Unmarshaller]. Iterators convert one element at a time.
//
// # Writes
//
// [Collection.Save] marshals an object, assigns a generated _id when it has none and upserts it.
// [Collection.UpdateQuery] builds an update that is executed by [Update.With]:
//
//	friends.UpdateQuery("{name:#}", "Alice").Upsert().With(ctx, "{$inc:{visits:1}}")
//
// # Drivers
//
// A [Collection] talks to the database through [driver.Driver]. [New] wires collections of a
// *mongo.Database through [github.com/jongo-go/jongo/pkg/driver/mongodriver]; [FromDriver] accepts any implementation.
package jongo
