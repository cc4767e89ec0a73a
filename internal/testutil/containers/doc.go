// Package containers starts the Docker dependencies of the integration
// tests with testcontainers-go: a MySQL 8.0 server standing in for both the
// config database and the dashboard server, and an Eclipse Mosquitto broker
// for change events.
//
// Every file is behind the integration build tag:
//
//	go test -tags=integration ./...
//
// A package typically starts one container in TestMain and shares it:
//
//	func TestMain(m *testing.M) {
//	    ctx := context.Background()
//	    db, err := containers.StartMySQL(ctx, containers.MySQLOptions{})
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    code := m.Run()
//	    _ = db.Terminate(ctx)
//	    os.Exit(code)
//	}
package containers
