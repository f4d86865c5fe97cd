// Package searchgate is an embedded Go client for OpenSearch. It runs the same
// validation and error classification as the searchgate HTTP gateway, in-process.
//
//	client, err := searchgate.New(ctx,
//	    searchgate.WithAddresses("https://localhost:9200"),
//	    searchgate.WithBasicAuth("admin", "admin"),
//	    searchgate.WithInsecureSkipVerify(),
//	)
//	defer client.Close()
//
//	_ = client.Indices().Create(ctx, "books", nil)
//	docs := client.Documents("books").WithRefresh(searchgate.RefreshWaitFor)
//	_, _ = docs.Create(ctx, "1", json.RawMessage(`{"title":"Go"}`))
//	res, _ := client.Search("books").Query(ctx, json.RawMessage(`{"match":{"title":"go"}}`), 0, 10)
//
// Cluster failures unwrap to the package sentinels:
//
//	if errors.Is(err, searchgate.ErrDocumentNotFound) { ... }
package searchgate
