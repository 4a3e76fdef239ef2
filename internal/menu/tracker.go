package menu

import (
	"context"
	"errors"
	"io"

	"wealthbook/internal/core"
	"wealthbook/internal/services"
	"wealthbook/internal/storage"
)

// TrackerMenu is the interaction loop for the simplified profile.
type TrackerMenu struct {
	svc *services.TrackerService
	*console
}

func NewTracker(svc *services.TrackerService, r io.Reader, w io.Writer) *TrackerMenu {
	return &TrackerMenu{
		svc:     svc,
		console: newConsole(r, w),
	}
}

// Run drives the menu until Exit is chosen or input ends.
func (m *TrackerMenu) Run(ctx context.Context) error {
	for {
		m.printf("\n--- wealthbook (tracker) ---\n")
		m.printf("1) View holdings\n")
		m.printf("2) Add holding\n")
		m.printf("3) Update holding\n")
		m.printf("4) Delete holding\n")
		m.printf("5) Total invested by category\n")
		m.printf("6) Exit\n")

		choice, err := m.prompt("Select an option: ")
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		switch choice {
		case "1":
			m.viewHoldings(ctx)
		case "2":
			m.addHolding(ctx)
		case "3":
			m.updateHolding(ctx)
		case "4":
			m.deleteHolding(ctx)
		case "5":
			m.totalInvested(ctx)
		case "6", "exit", "q":
			m.printf("Bye.\n")
			return nil
		default:
			m.printf("Invalid choice %q, try again.\n", choice)
		}
	}
}

func (m *TrackerMenu) viewHoldings(ctx context.Context) {
	cat, err := m.promptCategory()
	if err != nil {
		m.reportErr(err)
		return
	}

	switch cat {
	case core.Stocks:
		stocks, err := m.svc.ListStocks(ctx)
		if err != nil {
			m.reportErr(err)
			return
		}
		if len(stocks) == 0 {
			m.printf("No stocks recorded.\n")
			return
		}
		m.printf("%-6s %-20s %12s %12s\n", "ID", "Name", "Units", "Price")
		for _, s := range stocks {
			m.printf("%-6d %-20s %12s %12s\n", s.ID, s.Name, s.Units.String(), core.FormatAmount(s.Price))
		}
	case core.MutualFunds:
		funds, err := m.svc.ListMutualFunds(ctx)
		if err != nil {
			m.reportErr(err)
			return
		}
		if len(funds) == 0 {
			m.printf("No mutual funds recorded.\n")
			return
		}
		m.printf("%-6s %-20s %12s %12s\n", "ID", "Name", "Units", "Price")
		for _, f := range funds {
			m.printf("%-6d %-20s %12s %12s\n", f.ID, f.Name, f.Units.String(), core.FormatAmount(f.Price))
		}
	case core.Insurance:
		policies, err := m.svc.ListInsurances(ctx)
		if err != nil {
			m.reportErr(err)
			return
		}
		if len(policies) == 0 {
			m.printf("No insurance policies recorded.\n")
			return
		}
		m.printf("%-6s %-20s %12s %12s\n", "ID", "Name", "Premium", "Term (mo)")
		for _, p := range policies {
			m.printf("%-6d %-20s %12s %12d\n", p.ID, p.Name, core.FormatAmount(p.Premium), p.Term)
		}
	}
}

func (m *TrackerMenu) addHolding(ctx context.Context) {
	cat, err := m.promptCategory()
	if err != nil {
		m.reportErr(err)
		return
	}

	name, err := m.promptRequired("Name: ")
	if err != nil {
		m.reportErr(err)
		return
	}

	var id int64
	switch cat {
	case core.Stocks, core.MutualFunds:
		units, err := m.promptQuantity("Units: ")
		if err != nil {
			m.reportErr(err)
			return
		}
		price, err := m.promptPositiveAmount("Price per unit: ")
		if err != nil {
			m.reportErr(err)
			return
		}
		if cat == core.Stocks {
			id, err = m.svc.AddStock(ctx, core.Stock{Name: name, Units: units, Price: price})
		} else {
			id, err = m.svc.AddMutualFund(ctx, core.MutualFund{Name: name, Units: units, Price: price})
		}
		if err != nil {
			m.reportErr(err)
			return
		}
	case core.Insurance:
		premium, err := m.promptPositiveAmount("Premium: ")
		if err != nil {
			m.reportErr(err)
			return
		}
		term, err := m.promptInt("Term (months): ")
		if err != nil {
			m.reportErr(err)
			return
		}
		id, err = m.svc.AddInsurance(ctx, core.InsurancePolicy{Name: name, Premium: premium, Term: term})
		if err != nil {
			m.reportErr(err)
			return
		}
	}

	m.printf("Added with id %d.\n", id)
}

func (m *TrackerMenu) updateHolding(ctx context.Context) {
	cat, err := m.promptCategory()
	if err != nil {
		m.reportErr(err)
		return
	}
	id, err := m.promptID("Record id: ")
	if err != nil {
		m.reportErr(err)
		return
	}

	// Blank keeps the current value.
	var upd storage.HoldingUpdate
	name, err := m.prompt("New name (blank to keep): ")
	if err != nil {
		m.reportErr(err)
		return
	}
	if name != "" {
		upd.Name = &name
	}

	switch cat {
	case core.Stocks, core.MutualFunds:
		unitsRaw, err := m.prompt("New units (blank to keep): ")
		if err != nil {
			m.reportErr(err)
			return
		}
		if unitsRaw != "" {
			units, err := core.ParseQuantity(unitsRaw)
			if err != nil {
				m.reportErr(err)
				return
			}
			upd.Units = &units
		}
		priceRaw, err := m.prompt("New price (blank to keep): ")
		if err != nil {
			m.reportErr(err)
			return
		}
		if priceRaw != "" {
			price, err := core.ParsePositiveAmount(priceRaw)
			if err != nil {
				m.reportErr(err)
				return
			}
			upd.Price = &price
		}
		if upd == (storage.HoldingUpdate{}) {
			m.printf("Nothing to change.\n")
			return
		}
		if cat == core.Stocks {
			err = m.svc.UpdateStock(ctx, id, upd)
		} else {
			err = m.svc.UpdateMutualFund(ctx, id, upd)
		}
		if err != nil {
			m.reportErr(err)
			return
		}
	case core.Insurance:
		premiumRaw, err := m.prompt("New premium (blank to keep): ")
		if err != nil {
			m.reportErr(err)
			return
		}
		if premiumRaw != "" {
			premium, err := core.ParsePositiveAmount(premiumRaw)
			if err != nil {
				m.reportErr(err)
				return
			}
			upd.Price = &premium
		}
		termRaw, err := m.prompt("New term in months (blank to keep): ")
		if err != nil {
			m.reportErr(err)
			return
		}
		if termRaw != "" {
			term, convErr := parsePositiveInt(termRaw)
			if convErr != nil {
				m.reportErr(convErr)
				return
			}
			upd.Term = &term
		}
		if upd == (storage.HoldingUpdate{}) {
			m.printf("Nothing to change.\n")
			return
		}
		if err := m.svc.UpdateInsurance(ctx, id, upd); err != nil {
			m.reportErr(err)
			return
		}
	}

	m.printf("Updated record %d.\n", id)
}

func (m *TrackerMenu) deleteHolding(ctx context.Context) {
	cat, err := m.promptCategory()
	if err != nil {
		m.reportErr(err)
		return
	}
	id, err := m.promptID("Record id: ")
	if err != nil {
		m.reportErr(err)
		return
	}

	switch cat {
	case core.Stocks:
		err = m.svc.DeleteStock(ctx, id)
	case core.MutualFunds:
		err = m.svc.DeleteMutualFund(ctx, id)
	case core.Insurance:
		err = m.svc.DeleteInsurance(ctx, id)
	}
	if err != nil {
		m.reportErr(err)
		return
	}
	m.printf("Deleted record %d.\n", id)
}

func (m *TrackerMenu) totalInvested(ctx context.Context) {
	cat, err := m.promptCategory()
	if err != nil {
		m.reportErr(err)
		return
	}
	total, err := m.svc.AggregateTotal(ctx, cat)
	if err != nil {
		m.reportErr(err)
		return
	}
	m.printf("Total invested in %s: %s\n", cat, core.FormatAmount(total))
}
