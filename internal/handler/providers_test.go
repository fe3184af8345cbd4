package handler

import (
	"encoding/json"
	"net/http"
	"testing"
)

func TestListProviders(t *testing.T) {
	up := newStubAdapter("up")
	down := newStubAdapter("down")
	down.available = false
	r := newTestRouter(t, up, down)

	w := doJSON(r, http.MethodGet, "/api/routing/providers", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp struct {
		Providers []struct {
			Name           string `json:"name"`
			DisplayName    string `json:"displayName"`
			DefaultProfile string `json:"defaultProfile"`
			Available      bool   `json:"available"`
			Profiles       []struct {
				ID string `json:"id"`
			} `json:"profiles"`
		} `json:"providers"`
		DefaultProvider string `json:"defaultProvider"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if resp.DefaultProvider != "up" {
		t.Errorf("defaultProvider = %q, want up (first registered)", resp.DefaultProvider)
	}
	if len(resp.Providers) != 2 {
		t.Fatalf("got %d providers, want 2", len(resp.Providers))
	}

	// The listing is sorted by name: "down" before "up".
	if resp.Providers[0].Name != "down" || resp.Providers[1].Name != "up" {
		t.Errorf("providers not sorted: %v, %v", resp.Providers[0].Name, resp.Providers[1].Name)
	}
	if resp.Providers[0].Available {
		t.Error("broken provider reported available")
	}
	if !resp.Providers[1].Available {
		t.Error("healthy provider reported unavailable")
	}
	if resp.Providers[1].DisplayName != "Stub up" || resp.Providers[1].DefaultProfile != "cycling" {
		t.Errorf("provider metadata wrong: %+v", resp.Providers[1])
	}
	if len(resp.Providers[1].Profiles) != 2 {
		t.Errorf("profiles missing from listing: %+v", resp.Providers[1].Profiles)
	}
}

func TestGetProviderProfiles(t *testing.T) {
	r := newTestRouter(t, newStubAdapter("alpha"))

	w := doJSON(r, http.MethodGet, "/api/routing/providers/alpha/profiles", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp struct {
		Provider       string `json:"provider"`
		DefaultProfile string `json:"defaultProfile"`
		Profiles       []struct {
			ID       string `json:"id"`
			Category string `json:"category"`
		} `json:"profiles"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if resp.Provider != "alpha" || resp.DefaultProfile != "cycling" {
		t.Errorf("provider/default = %q/%q", resp.Provider, resp.DefaultProfile)
	}
	// Display order puts cycling before walking.
	if len(resp.Profiles) != 2 || resp.Profiles[0].ID != "cycling" {
		t.Errorf("profiles = %+v, want cycling first", resp.Profiles)
	}
}

func TestGetProviderProfiles_NotFound(t *testing.T) {
	r := newTestRouter(t, newStubAdapter("alpha"))

	w := doJSON(r, http.MethodGet, "/api/routing/providers/ghost/profiles", "")

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
	var resp map[string]any
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["code"] != "ProviderNotFound" {
		t.Errorf("code = %v, want ProviderNotFound", resp["code"])
	}
}

func TestSetDefaultProvider(t *testing.T) {
	r := newTestRouter(t, newStubAdapter("alpha"), newStubAdapter("beta"))

	w := doJSON(r, http.MethodPut, "/api/routing/admin/default-provider", `{"provider":"beta"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp map[string]any
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["defaultProvider"] != "beta" {
		t.Errorf("defaultProvider = %v, want beta", resp["defaultProvider"])
	}

	// Subsequent requests with no explicit provider now hit beta.
	list := doJSON(r, http.MethodGet, "/api/routing/providers", "")
	var listResp struct {
		DefaultProvider string `json:"defaultProvider"`
	}
	json.Unmarshal(list.Body.Bytes(), &listResp)
	if listResp.DefaultProvider != "beta" {
		t.Errorf("default after switch = %q, want beta", listResp.DefaultProvider)
	}
}

func TestSetDefaultProvider_Errors(t *testing.T) {
	r := newTestRouter(t, newStubAdapter("alpha"))

	if w := doJSON(r, http.MethodPut, "/api/routing/admin/default-provider", `{}`); w.Code != http.StatusBadRequest {
		t.Errorf("missing provider field: status = %d, want 400", w.Code)
	}
	if w := doJSON(r, http.MethodPut, "/api/routing/admin/default-provider", `{"provider":"ghost"}`); w.Code != http.StatusNotFound {
		t.Errorf("unknown provider: status = %d, want 404", w.Code)
	}
}
