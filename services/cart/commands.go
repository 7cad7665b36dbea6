package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/MarcGrol/shopcheckout/lib/mycache"
	"github.com/MarcGrol/shopcheckout/lib/myerrors"
	"github.com/MarcGrol/shopcheckout/lib/mylog"
)

// Current reads the cart from the store. A cart that was never filled is returned empty.
func (s *Service) Current(c context.Context, cartUID string) (Cart, error) {
	cart, err := s.load(c, cartUID)
	if err != nil {
		return Cart{}, err
	}

	s.refreshCache(c, cart)

	return cart, nil
}

// Cached is like Current but may serve the cart from the cache.
// Not for decisions that depend on the cart version.
func (s *Service) Cached(c context.Context, cartUID string) (Cart, error) {
	cart, err := s.cache.Get(c, cartUID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, mycache.ErrCacheMiss) {
		s.logger.Log(c, cartUID, mylog.SeverityWarn, "Error reading cart %s from cache: %s", cartUID, err)
	}

	return s.Current(c, cartUID)
}

func (s *Service) AddItem(c context.Context, cartUID string, productUID string) (Cart, error) {
	s.logger.Log(c, cartUID, mylog.SeverityInfo, "Add product %s to cart %s", productUID, cartUID)

	product, found := lookupProduct(productUID)
	if !found {
		return Cart{}, myerrors.NewInvalidInputError(fmt.Errorf("product with uid %s not found", productUID))
	}

	return s.mutate(c, cartUID, func(cart *Cart) error {
		cart.Items = append(cart.Items, product)
		return nil
	})
}

// RemoveItem removes one unit of the product
func (s *Service) RemoveItem(c context.Context, cartUID string, productUID string) (Cart, error) {
	s.logger.Log(c, cartUID, mylog.SeverityInfo, "Remove product %s from cart %s", productUID, cartUID)

	return s.mutate(c, cartUID, func(cart *Cart) error {
		if !cart.removeFirst(productUID) {
			return myerrors.NewNotFoundError(fmt.Errorf("product with uid %s not in cart %s", productUID, cartUID))
		}
		return nil
	})
}

func (s *Service) ApplyDiscount(c context.Context, cartUID string, percentage int64) (Cart, error) {
	s.logger.Log(c, cartUID, mylog.SeverityInfo, "Apply discount of %d%% to cart %s", percentage, cartUID)

	if percentage < 0 || percentage > 100 {
		return Cart{}, myerrors.NewInvalidInputError(fmt.Errorf("invalid discount percentage %d", percentage))
	}

	return s.mutate(c, cartUID, func(cart *Cart) error {
		cart.DiscountPercentage = percentage
		return nil
	})
}

func (s *Service) Clear(c context.Context, cartUID string) (Cart, error) {
	s.logger.Log(c, cartUID, mylog.SeverityInfo, "Clear cart %s", cartUID)

	return s.mutate(c, cartUID, func(cart *Cart) error {
		cart.Items = []LineItem{}
		cart.DiscountPercentage = 0
		return nil
	})
}

var errVersionChanged = errors.New("cart version changed")

// ClearIfVersion empties the cart only when it is still at the given version.
// It reports whether the cart was cleared.
func (s *Service) ClearIfVersion(c context.Context, cartUID string, version int64) (bool, error) {
	s.logger.Log(c, cartUID, mylog.SeverityInfo, "Clear cart %s at version %d", cartUID, version)

	_, err := s.mutate(c, cartUID, func(cart *Cart) error {
		if cart.Version != version {
			return errVersionChanged
		}
		cart.Items = []LineItem{}
		cart.DiscountPercentage = 0
		return nil
	})
	if errors.Is(err, errVersionChanged) {
		s.logger.Log(c, cartUID, mylog.SeverityWarn, "Cart %s changed since version %d: not cleared", cartUID, version)
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, nil
}

func (s *Service) mutate(c context.Context, cartUID string, modifier func(cart *Cart) error) (Cart, error) {
	now := s.nower.Now()

	var cart Cart
	err := s.cartStore.RunInTransaction(c, func(c context.Context) error {
		// must be idempotent
		var err error
		cart, err = s.load(c, cartUID)
		if err != nil {
			return err
		}

		err = modifier(&cart)
		if err != nil {
			return err
		}

		cart.Version++
		cart.LastModified = &now

		err = s.cartStore.Put(c, cartUID, cart)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error storing cart %s: %w", cartUID, err))
		}

		return nil
	})
	if err != nil {
		return Cart{}, err
	}

	s.invalidateCache(c, cartUID)

	return cart, nil
}

func (s *Service) load(c context.Context, cartUID string) (Cart, error) {
	cart, found, err := s.cartStore.Get(c, cartUID)
	if err != nil {
		return Cart{}, myerrors.NewInternalError(fmt.Errorf("error fetching cart %s: %w", cartUID, err))
	}
	if !found {
		return newCart(cartUID, s.nower.Now()), nil
	}
	// own copy: modifiers must not touch the stored backing array
	cart.Items = append([]LineItem{}, cart.Items...)
	return cart, nil
}

func (s *Service) refreshCache(c context.Context, cart Cart) {
	err := s.cache.Set(c, cart.UID, cart)
	if err != nil {
		s.logger.Log(c, cart.UID, mylog.SeverityWarn, "Error caching cart %s: %s", cart.UID, err)
	}
}

func (s *Service) invalidateCache(c context.Context, cartUID string) {
	err := s.cache.Delete(c, cartUID)
	if err != nil {
		s.logger.Log(c, cartUID, mylog.SeverityWarn, "Error invalidating cached cart %s: %s", cartUID, err)
	}
}
