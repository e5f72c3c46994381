package main

import (
	"go.mongodb.org/mongo-driver/bson"
)

// parseParams reads each argument as a relaxed Extended JSON value.
// Arguments that are not valid Extended JSON are kept as strings.
func parseParams(args []string) []any {
	params := make([]any, len(args))
	for i, arg := range args {
		params[i] = parseParam(arg)
	}
	return params
}

func parseParam(arg string) any {
	var doc bson.D
	if err := bson.UnmarshalExtJSON([]byte(`{"v":`+arg+`}`), false, &doc); err != nil || len(doc) != 1 {
		return arg
	}
	return doc[0].Value
}

// templateArgs splits positional arguments into the query template and its parameters.
// A missing template matches every document.
func templateArgs(args []string) (string, []any) {
	if len(args) == 0 {
		return "{}", nil
	}
	return args[0], parseParams(args[1:])
}
