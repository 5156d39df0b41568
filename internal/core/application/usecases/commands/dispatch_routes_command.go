package commands

import (
	"errors"
	"strings"

	"dispatch/internal/pkg/guard"
)

var (
	ErrDispatchRoutesCommandIsNotConstructed = errors.New(
		"DispatchRoutesCommand must be created via NewDispatchRoutesCommand constructor",
	)
	ErrAPIKeyIsRequired          = errors.New("api key is required")
	ErrPizzeriaAddressIsRequired = errors.New("pizzeria address is required")
	ErrCapacityIsInvalid         = errors.New("capacity per courier must be greater than 0")
)

// DispatchRoutesCommand asks for one dispatch cycle: plan routes for the ready orders
// using the idle couriers, starting and ending at the pizzeria.
//
// Example:
//
//	cmd, err := NewDispatchRoutesCommand(apiKey, "Rua Sete de Setembro, 100, Centro", 3)
//	if err != nil {
//	    return fmt.Errorf("invalid dispatch request: %w", err)
//	}
//
//	result, err := handler.Handle(ctx, cmd)
type DispatchRoutesCommand struct { //nolint:recvcheck //using for validation
	apiKey             string
	pizzeriaAddress    string
	capacityPerCourier int

	guard guard.ConstructorGuard
}

// NewDispatchRoutesCommand validates the cycle input. The api key authenticates
// against the geocoder and optimizer, capacity is counted in pizzas.
func NewDispatchRoutesCommand(apiKey, pizzeriaAddress string, capacityPerCourier int) (DispatchRoutesCommand, error) {
	command := DispatchRoutesCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setAPIKey(apiKey),
		command.setPizzeriaAddress(pizzeriaAddress),
		command.setCapacity(capacityPerCourier),
	); err != nil {
		return DispatchRoutesCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c DispatchRoutesCommand) Validate() error {
	return c.guard.Validate(ErrDispatchRoutesCommandIsNotConstructed)
}

func (c DispatchRoutesCommand) APIKey() string {
	return c.apiKey
}

func (c DispatchRoutesCommand) PizzeriaAddress() string {
	return c.pizzeriaAddress
}

func (c DispatchRoutesCommand) CapacityPerCourier() int {
	return c.capacityPerCourier
}

func (c *DispatchRoutesCommand) setAPIKey(apiKey string) error {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return ErrAPIKeyIsRequired
	}

	c.apiKey = apiKey
	return nil
}

func (c *DispatchRoutesCommand) setPizzeriaAddress(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrPizzeriaAddressIsRequired
	}

	c.pizzeriaAddress = text
	return nil
}

func (c *DispatchRoutesCommand) setCapacity(capacity int) error {
	if capacity <= 0 {
		return ErrCapacityIsInvalid
	}

	c.capacityPerCourier = capacity
	return nil
}
