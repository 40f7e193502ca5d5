package colgo_test

import (
	"context"
	"fmt"
	"log"

	"github.com/hupe1980/colgo"
	"github.com/hupe1980/colgo/rowsource"
)

func Example() {
	src := rowsource.NewMemorySource()
	src.Put("orders.json", []byte(`[
		{"id": 1, "item": "book", "price": 12.5},
		{"id": 2, "item": "pen", "price": 1.2},
		{"id": 3, "item": "lamp", "price": 40.0}
	]`))

	db, err := colgo.New(colgo.WithSource(src))
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := db.Ingest(context.Background(), "orders", "orders.json"); err != nil {
		log.Fatal(err)
	}

	items, err := db.ColumnValues("orders", "item")
	if err != nil {
		log.Fatal(err)
	}
	for _, v := range items {
		fmt.Println(v.StringValue())
	}

	// Output:
	// book
	// pen
	// lamp
}

func Example_scan() {
	src := rowsource.NewMemorySource()
	src.Put("m", []byte(`[{"n": 10}, {"n": 20}, {"n": 30}]`))

	db, err := colgo.New(colgo.WithSource(src), colgo.WithRadix(2))
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := db.Ingest(context.Background(), "m", "m"); err != nil {
		log.Fatal(err)
	}

	for v, err := range db.ScanColumn("m", "n") {
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(v.I64)
	}

	// Output:
	// 10
	// 20
	// 30
}
