package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/devnazarchuk/sneakers-shop/internal/models"
)

type cartItemRequest struct {
	ProductID int    `json:"productId"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	Quantity  int    `json:"quantity"`
}

// getCartHandler returns the current cart lines
func (s *Server) getCartHandler(w http.ResponseWriter, r *http.Request) {
	s.respondWithJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Data:    s.deps.Cart.Items(),
	})
}

// addCartItemHandler adds a product to the cart, merging with an
// existing line for the same product, size and color
func (s *Server) addCartItemHandler(w http.ResponseWriter, r *http.Request) {
	var req cartItemRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	defer r.Body.Close()

	product, ok := s.deps.Catalog.GetByID(req.ProductID)

	if !ok {
		s.respondWithError(w, http.StatusNotFound, "Product not found")
		return
	}

	quantity := req.Quantity

	if quantity <= 0 {
		quantity = 1
	}

	item := models.OrderItem{
		ProductID: product.ID,
		Title:     product.Title,
		Brand:     product.Brand,
		Size:      req.Size,
		Color:     req.Color,
		Quantity:  quantity,
		Price:     product.Price,
		Images:    product.Images,
	}

	s.deps.Cart.Add(item)

	s.respondWithJSON(w, http.StatusCreated, ApiResponse{
		Success: true,
		Data:    s.deps.Cart.Items(),
	})
}

// updateCartItemHandler sets the quantity of a cart line; zero or
// negative removes it
func (s *Server) updateCartItemHandler(w http.ResponseWriter, r *http.Request) {
	var req cartItemRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	defer r.Body.Close()
	s.deps.Cart.UpdateQuantity(req.ProductID, req.Size, req.Color, req.Quantity)

	s.respondWithJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Data:    s.deps.Cart.Items(),
	})
}

// removeCartItemHandler removes a cart line
func (s *Server) removeCartItemHandler(w http.ResponseWriter, r *http.Request) {
	var req cartItemRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	defer r.Body.Close()
	s.deps.Cart.Remove(req.ProductID, req.Size, req.Color)

	s.respondWithJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Data:    s.deps.Cart.Items(),
	})
}

// clearCartHandler empties the cart
func (s *Server) clearCartHandler(w http.ResponseWriter, r *http.Request) {
	s.deps.Cart.Clear()

	s.respondWithJSON(w, http.StatusOK, ApiResponse{Success: true})
}

// getFavoritesHandler returns the favorite product ids
func (s *Server) getFavoritesHandler(w http.ResponseWriter, r *http.Request) {
	s.respondWithJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Data:    s.deps.Favorites.List(),
	})
}

// toggleFavoriteHandler flips a product in or out of the favorites list
func (s *Server) toggleFavoriteHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])

	if err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	added := s.deps.Favorites.Toggle(id)

	s.respondWithJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Data: map[string]interface{}{
			"productId": id,
			"favorite":  added,
		},
	})
}

// getProfileHandler returns the stored customer profile
func (s *Server) getProfileHandler(w http.ResponseWriter, r *http.Request) {
	info, ok := s.deps.Profile.Get()

	if !ok {
		s.respondWithError(w, http.StatusNotFound, "No profile stored")
		return
	}

	s.respondWithJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Data:    info,
	})
}

// saveProfileHandler stores the customer profile
func (s *Server) saveProfileHandler(w http.ResponseWriter, r *http.Request) {
	var info models.CustomerInfo

	if err := json.NewDecoder(r.Body).Decode(&info); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	defer r.Body.Close()
	s.deps.Profile.Save(info)

	s.respondWithJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Data:    info,
	})
}

// logoutHandler wipes all locally stored state, orders included
func (s *Server) logoutHandler(w http.ResponseWriter, r *http.Request) {
	s.deps.Profile.Logout()

	s.respondWithJSON(w, http.StatusOK, ApiResponse{Success: true})
}
