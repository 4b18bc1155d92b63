package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"strconv"

	"github.com/patric-chuzhbe/shoplist/internal/models"
)

func newExampleClient() *http.Client {
	jar, err := cookiejar.New(nil)
	if err != nil {
		panic(err)
	}

	return &http.Client{Jar: jar}
}

func postJSON(client *http.Client, url string, payload any) *http.Response {
	body, err := json.Marshal(payload)
	if err != nil {
		panic(err)
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		panic(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		panic(err)
	}

	return resp
}

func ExampleRouter_GetPing() {
	server, _ := setupTestRouter(nil)
	defer server.Close()

	resp, err := http.Get(server.URL + "/ping")
	if err != nil {
		panic(err)
	}
	defer resp.Body.Close()

	fmt.Println("Status Code:", resp.StatusCode)

	// Output:
	// Status Code: 200
}

func ExampleRouter_PostApiregister() {
	server, _ := setupTestRouter(nil)
	defer server.Close()

	resp := postJSON(newExampleClient(), server.URL+"/api/register", models.RegisterRequest{
		Username: "alice",
		Password: "secret123",
		Name:     "Alice",
		Email:    "alice@example.com",
	})
	defer resp.Body.Close()

	var created struct {
		Username string `json:"username"`
		Email    string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		panic(err)
	}

	fmt.Println("Status Code:", resp.StatusCode)
	fmt.Println("Username:", created.Username)
	fmt.Println("Email:", created.Email)

	// Output:
	// Status Code: 201
	// Username: alice
	// Email: alice@example.com
}

func ExampleRouter_PostApilists() {
	server, _ := setupTestRouter(nil)
	defer server.Close()

	client := newExampleClient()
	registered := postJSON(client, server.URL+"/api/register", models.RegisterRequest{
		Username: "bob",
		Password: "secret123",
		Name:     "Bob",
		Email:    "bob@example.com",
	})
	registered.Body.Close()

	resp := postJSON(client, server.URL+"/api/lists", models.CreateListRequest{
		Name:        "Groceries",
		DatePlanned: "2024-05-01",
	})
	defer resp.Body.Close()

	var list models.ShoppingList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		panic(err)
	}

	fmt.Println("Status Code:", resp.StatusCode)
	fmt.Println("Name:", list.Name)
	fmt.Println("Color:", list.Color)
	fmt.Println("Owner:", *list.OwnerName)

	items := postJSON(client, server.URL+"/api/lists/"+strconv.FormatInt(list.ID, 10)+"/items", models.CreateItemRequest{
		Name:     "Milk",
		Quantity: 2,
		Unit:     "l",
	})
	defer items.Body.Close()

	var item models.ListItem
	if err := json.NewDecoder(items.Body).Decode(&item); err != nil {
		panic(err)
	}

	fmt.Println("Item:", item.Name, item.Quantity, *item.Unit, item.Status)

	// Output:
	// Status Code: 201
	// Name: Groceries
	// Color: #22c55e
	// Owner: Bob
	// Item: Milk 2 l pending
}
