// Package utils holds the router, id and swagger helpers shared by the HTTP layer.
//
// Local dependencies:
//
//	docker run -p 6379:6379 -d redis
//	docker run -p 6333:6333 -p 6334:6334 -v delphiVectors:/qdrant/storage qdrant/qdrant
//
// Regenerate the swagger docs after changing handler annotations:
//
//	swag init -g cmd/api/main.go --parseDependency --parseInternal --dir ./ --output ./cmd/api/docs
package utils
