package service

import (
	"net/http"

	"github.com/fulldump/apitest"
	"github.com/fulldump/biff"
)

type JSON = map[string]interface{}

// Acceptance walks the whole session lifecycle through the public surface:
// create, build and append records, navigate, search, update, erase, close.
// It is shared between the API acceptance test and any environment that can
// provide an apitest request factory.
func Acceptance(a *biff.A, apiRequest func(method, path string) *apitest.Request) {

	appendContact := func(name, phone string, age int) {
		apiRequest("POST", "/session:clear").Do()
		apiRequest("POST", "/session:set").
			WithBodyJson(JSON{"name": "name", "value": name}).Do()
		apiRequest("POST", "/session:set").
			WithBodyJson(JSON{"name": "phone", "value": phone}).Do()
		apiRequest("POST", "/session:set").
			WithBodyJson(JSON{"name": "age", "value": age}).Do()
		resp := apiRequest("POST", "/session:appendRecord").Do()
		biff.AssertEqual(resp.StatusCode, http.StatusCreated)
	}

	a.Alternative("Create data file", func(a *biff.A) {
		resp := apiRequest("POST", "/session").
			WithBodyJson(JSON{
				"device": "A",
				"name":   "CONTACTS",
				"schema": "name$,phone$,age%",
				"mode":   "create",
			}).Do()
		Save(resp, "Create data file", `
			Creates an empty data file on device A and opens the one
			session. The file starts at end-of-file.
		`)

		biff.AssertEqual(resp.StatusCode, http.StatusCreated)
		body := resp.BodyJsonMap()
		biff.AssertEqual(body["device"], "A")
		biff.AssertEqual(body["name"], "CONTACTS")
		biff.AssertEqual(body["schema"], "name$,phone$,age%")
		biff.AssertEqual(body["eof"], true)
		biff.AssertEqualJson(body["records"], 0)

		a.Alternative("Second open is rejected", func(a *biff.A) {
			resp := apiRequest("POST", "/session").
				WithBodyJson(JSON{
					"device": "A",
					"name":   "OTHER",
					"schema": "x$",
					"mode":   "create",
				}).Do()
			Save(resp, "Second open rejected", `
				Only one session can be open at a time.
			`)

			biff.AssertEqual(resp.StatusCode, http.StatusConflict)
			errorBody := resp.BodyJsonMap()["error"].(JSON)
			biff.AssertEqualJson(errorBody["code"], 7)
		})

		a.Alternative("Create same file again", func(a *biff.A) {
			apiRequest("DELETE", "/session").Do()
			resp := apiRequest("POST", "/session").
				WithBodyJson(JSON{
					"device": "A",
					"name":   "CONTACTS",
					"schema": "name$,phone$,age%",
					"mode":   "create",
				}).Do()

			biff.AssertEqual(resp.StatusCode, http.StatusConflict)
			errorBody := resp.BodyJsonMap()["error"].(JSON)
			biff.AssertEqualJson(errorBody["code"], 2)
		})

		a.Alternative("Catalog shows the file", func(a *biff.A) {
			resp := apiRequest("GET", "/devices/A/files").Do()
			Save(resp, "Device catalog", ``)

			biff.AssertEqual(resp.StatusCode, http.StatusOK)
			files := resp.BodyJson().([]interface{})
			biff.AssertEqual(len(files), 1)
			biff.AssertEqual(files[0].(JSON)["name"], "CONTACTS")
		})

		a.Alternative("Append three contacts", func(a *biff.A) {
			appendContact("Alice", "555-0001", 30)
			appendContact("Bob", "555-0002", 25)
			appendContact("Charlie", "555-0003", 35)

			resp := apiRequest("GET", "/session").Do()
			biff.AssertEqualJson(resp.BodyJsonMap()["records"], 3)

			a.Alternative("Iterate in append order", func(a *biff.A) {
				resp := apiRequest("POST", "/session:first").Do()
				biff.AssertEqualJson(resp.BodyJsonMap()["pos"], 1)

				names := []string{}
				for {
					read := apiRequest("POST", "/session:read").Do()
					record := read.BodyJsonMap()["record"].(JSON)
					names = append(names, record["name"].(string))

					next := apiRequest("POST", "/session:next").Do()
					if next.BodyJsonMap()["eof"] == true {
						break
					}
				}
				biff.AssertEqual(names, []string{"Alice", "Bob", "Charlie"})
			})

			a.Alternative("Find Bob by substring", func(a *biff.A) {
				apiRequest("POST", "/session:first").Do()
				resp := apiRequest("POST", "/session:find").
					WithBodyJson(JSON{"pattern": "Bob"}).Do()
				Save(resp, "Find substring", `
					Forward scan from the current position, matching
					anywhere in the raw record bytes.
				`)

				body := resp.BodyJsonMap()
				biff.AssertEqual(body["found"], true)
				biff.AssertEqualJson(body["pos"], 2)

				read := apiRequest("POST", "/session:read").Do()
				record := read.BodyJsonMap()["record"].(JSON)
				biff.AssertEqual(record["phone"], "555-0002")
			})

			a.Alternative("Find miss leaves position", func(a *biff.A) {
				apiRequest("POST", "/session:first").Do()
				resp := apiRequest("POST", "/session:find").
					WithBodyJson(JSON{"pattern": "Zephyr"}).Do()

				body := resp.BodyJsonMap()
				biff.AssertEqual(body["found"], false)
				biff.AssertEqualJson(body["pos"], 1)
			})

			a.Alternative("Find with filter", func(a *biff.A) {
				resp := apiRequest("POST", "/session:find").
					WithBodyJson(JSON{
						"mode":   "filter",
						"filter": JSON{"age": 25},
						"limit":  10,
					}).Do()
				Save(resp, "Find filter", `
					Schema-decoded linear scan with a condition filter.
					Does not move the session position.
				`)

				match := resp.BodyJsonMap()
				biff.AssertEqualJson(match["pos"], 2)
				biff.AssertEqual(match["record"].(JSON)["name"], "Bob")
			})

			a.Alternative("Get single fields", func(a *biff.A) {
				apiRequest("POST", "/session:first").Do()
				apiRequest("POST", "/session:read").Do()

				byName := apiRequest("POST", "/session:get").
					WithBodyJson(JSON{"name": "age"}).Do()
				biff.AssertEqualJson(byName.BodyJsonMap()["value"], 30)

				byIndex := apiRequest("POST", "/session:get").
					WithBodyJson(JSON{"index": 1}).Do()
				biff.AssertEqual(byIndex.BodyJsonMap()["value"], "Alice")

				missing := apiRequest("POST", "/session:get").
					WithBodyJson(JSON{"name": "nope"}).Do()
				biff.AssertEqual(missing.StatusCode, http.StatusBadRequest)

				lastError := apiRequest("POST", "/session:lastError").Do()
				biff.AssertEqualJson(lastError.BodyJsonMap()["code"], 11)
			})

			a.Alternative("Update relocates the record", func(a *biff.A) {
				apiRequest("POST", "/session:first").Do()
				apiRequest("POST", "/session:clear").Do()
				apiRequest("POST", "/session:set").
					WithBodyJson(JSON{"name": "name", "value": "Alice"}).Do()
				apiRequest("POST", "/session:set").
					WithBodyJson(JSON{"name": "phone", "value": "555-0001"}).Do()
				apiRequest("POST", "/session:set").
					WithBodyJson(JSON{"name": "age", "value": 31}).Do()

				resp := apiRequest("POST", "/session:update").Do()
				Save(resp, "Update record", `
					Update erases the old record and appends the new
					one, so the record moves to the end of the stream.
				`)

				biff.AssertEqualJson(resp.BodyJsonMap()["pos"], 3)

				read := apiRequest("POST", "/session:read").Do()
				record := read.BodyJsonMap()["record"].(JSON)
				biff.AssertEqual(record["name"], "Alice")
				biff.AssertEqualJson(record["age"], 31)
			})

			a.Alternative("Erase compacts the stream", func(a *biff.A) {
				apiRequest("POST", "/session:first").Do()
				resp := apiRequest("POST", "/session:erase").Do()
				Save(resp, "Erase record", ``)

				body := resp.BodyJsonMap()
				biff.AssertEqualJson(body["records"], 2)
				biff.AssertEqualJson(body["pos"], 1)

				read := apiRequest("POST", "/session:read").Do()
				record := read.BodyJsonMap()["record"].(JSON)
				biff.AssertEqual(record["name"], "Bob")
			})

			a.Alternative("Close and reopen", func(a *biff.A) {
				resp := apiRequest("DELETE", "/session").Do()
				biff.AssertEqual(resp.StatusCode, http.StatusOK)

				resp = apiRequest("POST", "/session").
					WithBodyJson(JSON{
						"device": "A",
						"name":   "CONTACTS",
						"schema": "name$,phone$,age%",
						"mode":   "open",
					}).Do()
				Save(resp, "Open data file", ``)

				biff.AssertEqual(resp.StatusCode, http.StatusCreated)
				body := resp.BodyJsonMap()
				biff.AssertEqualJson(body["records"], 3)
				biff.AssertEqualJson(body["pos"], 1)
				biff.AssertEqual(body["eof"], false)
			})
		})

		a.Alternative("Oversized record is rejected", func(a *biff.A) {
			long := make([]byte, 300)
			for i := range long {
				long[i] = 'x'
			}
			apiRequest("POST", "/session:clear").Do()
			apiRequest("POST", "/session:set").
				WithBodyJson(JSON{"name": "name", "value": string(long)}).Do()
			resp := apiRequest("POST", "/session:appendRecord").Do()

			biff.AssertEqual(resp.StatusCode, http.StatusRequestEntityTooLarge)
			errorBody := resp.BodyJsonMap()["error"].(JSON)
			biff.AssertEqualJson(errorBody["code"], 9)

			info := apiRequest("GET", "/session").Do()
			biff.AssertEqualJson(info.BodyJsonMap()["records"], 0)
		})

		a.Alternative("Close twice", func(a *biff.A) {
			resp := apiRequest("DELETE", "/session").Do()
			biff.AssertEqual(resp.StatusCode, http.StatusOK)

			resp = apiRequest("DELETE", "/session").Do()
			biff.AssertEqual(resp.StatusCode, http.StatusConflict)
		})
	})

	a.Alternative("Open missing file", func(a *biff.A) {
		resp := apiRequest("POST", "/session").
			WithBodyJson(JSON{
				"device": "A",
				"name":   "NOPE",
				"mode":   "open",
			}).Do()

		biff.AssertEqual(resp.StatusCode, http.StatusNotFound)
		errorBody := resp.BodyJsonMap()["error"].(JSON)
		biff.AssertEqualJson(errorBody["code"], 1)
	})

	a.Alternative("List devices", func(a *biff.A) {
		resp := apiRequest("GET", "/devices").Do()
		Save(resp, "List devices", ``)

		biff.AssertEqual(resp.StatusCode, http.StatusOK)
		devices := resp.BodyJson().([]interface{})
		biff.AssertEqual(devices[0].(JSON)["device"], "A")
	})
}
