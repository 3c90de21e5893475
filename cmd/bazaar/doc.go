// Package main provides the bazaar service CLI.
//
// Build and run from the repository root:
//
//	go run ./cmd/bazaar serve        # start the API server
//	go run ./cmd/bazaar db:migrate   # run migrations
//	go run ./cmd/bazaar db:rollback
//	go run ./cmd/bazaar db:status
//	go run ./cmd/bazaar db:seed      # seed development data
//	go run ./cmd/bazaar route:list   # print the route table
//	go run ./cmd/bazaar queue:work   # standalone job workers
//	go run ./cmd/bazaar schedule:run # standalone scheduler
package main
