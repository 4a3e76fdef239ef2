package menu

import (
	"context"
	"errors"
	"io"

	"wealthbook/internal/core"
	"wealthbook/internal/services"
	"wealthbook/internal/storage"
)

// LedgerMenu is the interaction loop for the normalized profile: an auth
// gate followed by a per-user session menu.
type LedgerMenu struct {
	svc *services.LedgerService
	*console
}

func NewLedger(svc *services.LedgerService, r io.Reader, w io.Writer) *LedgerMenu {
	return &LedgerMenu{
		svc:     svc,
		console: newConsole(r, w),
	}
}

// Run drives the auth gate until Exit is chosen or input ends. A
// successful login drops into the session loop; logging out returns here.
func (m *LedgerMenu) Run(ctx context.Context) error {
	for {
		m.printf("\n--- wealthbook ---\n")
		m.printf("1) Login\n")
		m.printf("2) Register\n")
		m.printf("3) Exit\n")

		choice, err := m.prompt("Select an option: ")
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		switch choice {
		case "1":
			user, ok := m.login(ctx)
			if !ok {
				continue
			}
			sessionLoop := m.session
			if user.Role == core.RoleAdmin {
				sessionLoop = m.adminSession
			}
			if err := sessionLoop(ctx, user); err != nil {
				if errors.Is(err, io.EOF) {
					return nil
				}
				return err
			}
		case "2":
			m.register(ctx)
		case "3", "exit", "q":
			m.printf("Bye.\n")
			return nil
		default:
			m.printf("Invalid choice %q, try again.\n", choice)
		}
	}
}

func (m *LedgerMenu) login(ctx context.Context) (core.User, bool) {
	username, err := m.promptRequired("Username: ")
	if err != nil {
		m.reportErr(err)
		return core.User{}, false
	}
	password, err := m.promptRequired("Password: ")
	if err != nil {
		m.reportErr(err)
		return core.User{}, false
	}

	user, err := m.svc.Authenticate(ctx, username, password)
	if err != nil {
		m.reportErr(err)
		return core.User{}, false
	}
	m.printf("Welcome back, %s.\n", user.Username)
	return user, true
}

func (m *LedgerMenu) register(ctx context.Context) {
	username, err := m.promptRequired("Username: ")
	if err != nil {
		m.reportErr(err)
		return
	}
	password, err := m.promptRequired("Password: ")
	if err != nil {
		m.reportErr(err)
		return
	}
	email, err := m.prompt("Email (optional): ")
	if err != nil {
		m.reportErr(err)
		return
	}

	id, err := m.svc.Register(ctx, username, password, email, core.RoleUser)
	if err != nil {
		m.reportErr(err)
		return
	}
	m.printf("Registered user %d. You can log in now.\n", id)
}

// session is the per-user menu. Returns io.EOF when input ends, nil on
// logout.
func (m *LedgerMenu) session(ctx context.Context, user core.User) error {
	for {
		m.printf("\n--- %s's ledger ---\n", user.Username)
		m.printf(" 1) View accounts\n")
		m.printf(" 2) Add account\n")
		m.printf(" 3) Update account balance\n")
		m.printf(" 4) Delete account\n")
		m.printf(" 5) View assets\n")
		m.printf(" 6) Add asset\n")
		m.printf(" 7) Update asset\n")
		m.printf(" 8) Delete asset\n")
		m.printf(" 9) Buy asset\n")
		m.printf("10) View transactions\n")
		m.printf("11) Add transaction\n")
		m.printf("12) Delete transaction\n")
		m.printf("13) Portfolio summary\n")
		m.printf("14) Delete my data\n")
		m.printf("15) Logout\n")

		choice, err := m.prompt("Select an option: ")
		if err != nil {
			return err
		}

		switch choice {
		case "1":
			m.viewAccounts(ctx, user.ID)
		case "2":
			m.addAccount(ctx, user.ID)
		case "3":
			m.updateBalance(ctx, user.ID)
		case "4":
			m.deleteAccount(ctx, user.ID)
		case "5":
			m.viewAssets(ctx, user.ID)
		case "6":
			m.addAsset(ctx, user.ID)
		case "7":
			m.updateAsset(ctx, user.ID)
		case "8":
			m.deleteAsset(ctx, user.ID)
		case "9":
			m.buyAsset(ctx, user.ID)
		case "10":
			m.viewTransactions(ctx, user.ID)
		case "11":
			m.addTransaction(ctx, user.ID)
		case "12":
			m.deleteTransaction(ctx, user.ID)
		case "13":
			m.portfolioSummary(ctx, user.ID)
		case "14":
			if m.deleteMyData(ctx, user.ID) {
				return nil
			}
		case "15", "logout":
			m.printf("Logged out.\n")
			return nil
		default:
			m.printf("Invalid choice %q, try again.\n", choice)
		}
	}
}

// adminSession replaces the regular session for administrator logins: user
// management instead of personal bookkeeping.
func (m *LedgerMenu) adminSession(ctx context.Context, user core.User) error {
	for {
		m.printf("\n--- admin: %s ---\n", user.Username)
		m.printf("1) View all users\n")
		m.printf("2) Delete user\n")
		m.printf("3) Logout\n")

		choice, err := m.prompt("Select an option: ")
		if err != nil {
			return err
		}

		switch choice {
		case "1":
			m.viewAllUsers(ctx)
		case "2":
			m.adminDeleteUser(ctx, user.ID)
		case "3", "logout":
			m.printf("Logged out.\n")
			return nil
		default:
			m.printf("Invalid choice %q, try again.\n", choice)
		}
	}
}

func (m *LedgerMenu) viewAllUsers(ctx context.Context) {
	users, err := m.svc.ListUsers(ctx)
	if err != nil {
		m.reportErr(err)
		return
	}
	if len(users) == 0 {
		m.printf("No users registered.\n")
		return
	}
	m.printf("%-6s %-20s %-30s %-6s\n", "ID", "Username", "Email", "Role")
	for _, u := range users {
		m.printf("%-6d %-20s %-30s %-6s\n", u.ID, u.Username, u.Email, u.Role)
	}
}

// adminDeleteUser removes a user and everything they own. Admin accounts
// are protected; regular users remove themselves via delete-my-data.
func (m *LedgerMenu) adminDeleteUser(ctx context.Context, adminID int64) {
	id, err := m.promptID("User id: ")
	if err != nil {
		m.reportErr(err)
		return
	}
	target, err := m.svc.GetUser(ctx, id)
	if err != nil {
		m.reportErr(err)
		return
	}
	if target.Role == core.RoleAdmin || target.ID == adminID {
		m.printf("Admin accounts cannot be deleted here.\n")
		return
	}

	confirm, err := m.prompt("This removes the user and every owned record. Type 'yes' to confirm: ")
	if err != nil {
		m.reportErr(err)
		return
	}
	if confirm != "yes" {
		m.printf("Cancelled.\n")
		return
	}
	if err := m.svc.DeleteUser(ctx, id); err != nil {
		m.reportErr(err)
		return
	}
	m.printf("Deleted user %s and all their data.\n", target.Username)
}

func (m *LedgerMenu) viewAccounts(ctx context.Context, userID int64) {
	accounts, err := m.svc.ListAccounts(ctx, userID)
	if err != nil {
		m.reportErr(err)
		return
	}
	if len(accounts) == 0 {
		m.printf("No accounts yet.\n")
		return
	}
	m.printf("%-6s %-20s %-12s %14s %-4s\n", "ID", "Name", "Type", "Balance", "Cur")
	for _, a := range accounts {
		m.printf("%-6d %-20s %-12s %14s %-4s\n",
			a.ID, a.Name, a.Type, core.FormatAmount(a.Balance), a.Currency)
	}
}

func (m *LedgerMenu) addAccount(ctx context.Context, userID int64) {
	name, err := m.promptRequired("Account name: ")
	if err != nil {
		m.reportErr(err)
		return
	}
	accType, err := m.promptRequired("Account type (e.g. savings, brokerage): ")
	if err != nil {
		m.reportErr(err)
		return
	}
	balance, err := m.promptAmount("Opening balance: ")
	if err != nil {
		m.reportErr(err)
		return
	}
	currency, err := m.prompt("Currency (blank for EUR): ")
	if err != nil {
		m.reportErr(err)
		return
	}
	if currency == "" {
		currency = "EUR"
	}

	id, err := m.svc.AddAccount(ctx, core.Account{
		UserID:   userID,
		Name:     name,
		Type:     accType,
		Balance:  balance,
		Currency: currency,
	})
	if err != nil {
		m.reportErr(err)
		return
	}
	m.printf("Added account %d.\n", id)
}

func (m *LedgerMenu) updateBalance(ctx context.Context, userID int64) {
	id, err := m.promptID("Account id: ")
	if err != nil {
		m.reportErr(err)
		return
	}
	balance, err := m.promptAmount("New balance: ")
	if err != nil {
		m.reportErr(err)
		return
	}
	if err := m.svc.UpdateAccountBalance(ctx, userID, id, balance); err != nil {
		m.reportErr(err)
		return
	}
	m.printf("Updated account %d.\n", id)
}

func (m *LedgerMenu) deleteAccount(ctx context.Context, userID int64) {
	id, err := m.promptID("Account id: ")
	if err != nil {
		m.reportErr(err)
		return
	}
	if err := m.svc.DeleteAccount(ctx, userID, id); err != nil {
		m.reportErr(err)
		return
	}
	m.printf("Deleted account %d. Linked assets and transactions were kept.\n", id)
}

func (m *LedgerMenu) viewAssets(ctx context.Context, userID int64) {
	assets, err := m.svc.ListAssets(ctx, userID)
	if err != nil {
		m.reportErr(err)
		return
	}
	if len(assets) == 0 {
		m.printf("No assets yet.\n")
		return
	}
	m.printf("%-6s %-20s %-12s %14s %12s %-4s\n", "ID", "Name", "Type", "Value", "Quantity", "Cur")
	for _, a := range assets {
		m.printf("%-6d %-20s %-12s %14s %12s %-4s\n",
			a.ID, a.Name, a.Type, core.FormatAmount(a.Value), a.Quantity.String(), a.Currency)
	}
}

func (m *LedgerMenu) addAsset(ctx context.Context, userID int64) {
	name, err := m.promptRequired("Asset name: ")
	if err != nil {
		m.reportErr(err)
		return
	}
	assetType, err := m.promptRequired("Asset type (e.g. stock, fund, bond): ")
	if err != nil {
		m.reportErr(err)
		return
	}
	value, err := m.promptAmount("Current value: ")
	if err != nil {
		m.reportErr(err)
		return
	}
	quantity, err := m.promptQuantity("Quantity: ")
	if err != nil {
		m.reportErr(err)
		return
	}
	price, err := m.promptAmount("Purchase price: ")
	if err != nil {
		m.reportErr(err)
		return
	}
	date, err := m.prompt("Purchase date YYYY-MM-DD (optional): ")
	if err != nil {
		m.reportErr(err)
		return
	}
	accountRaw, err := m.prompt("Account id to link (blank for none): ")
	if err != nil {
		m.reportErr(err)
		return
	}
	var accountID int64
	if accountRaw != "" {
		if accountID, err = parseID(accountRaw); err != nil {
			m.reportErr(err)
			return
		}
	}
	currency, err := m.prompt("Currency (blank for EUR): ")
	if err != nil {
		m.reportErr(err)
		return
	}
	if currency == "" {
		currency = "EUR"
	}

	id, err := m.svc.AddAsset(ctx, core.Asset{
		UserID:        userID,
		AccountID:     accountID,
		Name:          name,
		Type:          assetType,
		Value:         value,
		Quantity:      quantity,
		PurchasePrice: price,
		PurchaseDate:  date,
		Currency:      currency,
	})
	if err != nil {
		m.reportErr(err)
		return
	}
	m.printf("Added asset %d.\n", id)
}

func (m *LedgerMenu) updateAsset(ctx context.Context, userID int64) {
	id, err := m.promptID("Asset id: ")
	if err != nil {
		m.reportErr(err)
		return
	}

	// Blank keeps the current value.
	var upd storage.AssetUpdate
	name, err := m.prompt("New name (blank to keep): ")
	if err != nil {
		m.reportErr(err)
		return
	}
	if name != "" {
		upd.Name = &name
	}
	valueRaw, err := m.prompt("New value (blank to keep): ")
	if err != nil {
		m.reportErr(err)
		return
	}
	if valueRaw != "" {
		value, convErr := core.ParseAmount(valueRaw)
		if convErr != nil {
			m.reportErr(convErr)
			return
		}
		upd.Value = &value
	}
	quantityRaw, err := m.prompt("New quantity (blank to keep): ")
	if err != nil {
		m.reportErr(err)
		return
	}
	if quantityRaw != "" {
		quantity, convErr := core.ParseQuantity(quantityRaw)
		if convErr != nil {
			m.reportErr(convErr)
			return
		}
		upd.Quantity = &quantity
	}

	if upd == (storage.AssetUpdate{}) {
		m.printf("Nothing to change.\n")
		return
	}
	if err := m.svc.UpdateAsset(ctx, userID, id, upd); err != nil {
		m.reportErr(err)
		return
	}
	m.printf("Updated asset %d.\n", id)
}

func (m *LedgerMenu) deleteAsset(ctx context.Context, userID int64) {
	id, err := m.promptID("Asset id: ")
	if err != nil {
		m.reportErr(err)
		return
	}
	if err := m.svc.DeleteAsset(ctx, userID, id); err != nil {
		m.reportErr(err)
		return
	}
	m.printf("Deleted asset %d.\n", id)
}

// buyAsset pays for units of an existing asset from one of the user's
// accounts, growing the holding and logging the purchase.
func (m *LedgerMenu) buyAsset(ctx context.Context, userID int64) {
	accountID, err := m.promptID("Pay from account id: ")
	if err != nil {
		m.reportErr(err)
		return
	}
	assetID, err := m.promptID("Asset id to buy: ")
	if err != nil {
		m.reportErr(err)
		return
	}
	quantity, err := m.promptQuantity("Quantity to buy: ")
	if err != nil {
		m.reportErr(err)
		return
	}
	unitPrice, err := m.promptPositiveAmount("Price per unit: ")
	if err != nil {
		m.reportErr(err)
		return
	}

	total, err := m.svc.BuyAsset(ctx, userID, accountID, assetID, quantity, unitPrice)
	if err != nil {
		m.reportErr(err)
		return
	}
	m.printf("Bought %s units for %s.\n", quantity.String(), core.FormatAmount(total))
}

func (m *LedgerMenu) viewTransactions(ctx context.Context, userID int64) {
	txs, err := m.svc.ListTransactions(ctx, userID)
	if err != nil {
		m.reportErr(err)
		return
	}
	if len(txs) == 0 {
		m.printf("No transactions yet.\n")
		return
	}
	m.printf("%-6s %-12s %14s %-20s %s\n", "ID", "Type", "Amount", "Date", "Description")
	for _, t := range txs {
		m.printf("%-6d %-12s %14s %-20s %s\n",
			t.ID, t.Type, core.FormatAmount(t.Amount),
			t.Date.Format("2006-01-02 15:04:05"), t.Description)
	}
}

func (m *LedgerMenu) addTransaction(ctx context.Context, userID int64) {
	txType, err := m.promptRequired("Transaction type (e.g. buy, sell, deposit): ")
	if err != nil {
		m.reportErr(err)
		return
	}
	amount, err := m.promptAmount("Amount (negative for outflow): ")
	if err != nil {
		m.reportErr(err)
		return
	}
	description, err := m.prompt("Description (optional): ")
	if err != nil {
		m.reportErr(err)
		return
	}
	accountRaw, err := m.prompt("Account id to link (blank for none): ")
	if err != nil {
		m.reportErr(err)
		return
	}
	var accountID int64
	if accountRaw != "" {
		if accountID, err = parseID(accountRaw); err != nil {
			m.reportErr(err)
			return
		}
	}
	assetRaw, err := m.prompt("Asset id to link (blank for none): ")
	if err != nil {
		m.reportErr(err)
		return
	}
	var assetID int64
	if assetRaw != "" {
		if assetID, err = parseID(assetRaw); err != nil {
			m.reportErr(err)
			return
		}
	}

	id, err := m.svc.AddTransaction(ctx, core.Transaction{
		UserID:      userID,
		AccountID:   accountID,
		AssetID:     assetID,
		Type:        txType,
		Amount:      amount,
		Description: description,
	})
	if err != nil {
		m.reportErr(err)
		return
	}
	m.printf("Added transaction %d.\n", id)
}

func (m *LedgerMenu) deleteTransaction(ctx context.Context, userID int64) {
	id, err := m.promptID("Transaction id: ")
	if err != nil {
		m.reportErr(err)
		return
	}
	if err := m.svc.DeleteTransaction(ctx, userID, id); err != nil {
		m.reportErr(err)
		return
	}
	m.printf("Deleted transaction %d.\n", id)
}

func (m *LedgerMenu) portfolioSummary(ctx context.Context, userID int64) {
	sum, err := m.svc.PortfolioSummary(ctx, userID)
	if err != nil {
		m.reportErr(err)
		return
	}
	m.printf("Account balances: %s\n", core.FormatAmount(sum.AccountTotal))
	m.printf("Asset values:     %s\n", core.FormatAmount(sum.AssetTotal))
	m.printf("Total:            %s\n", core.FormatAmount(sum.Total()))
}

// deleteMyData removes the user and all owned records after confirmation.
// Returns true when the user was deleted, ending the session.
func (m *LedgerMenu) deleteMyData(ctx context.Context, userID int64) bool {
	confirm, err := m.prompt("This removes your user and every owned record. Type 'yes' to confirm: ")
	if err != nil {
		m.reportErr(err)
		return false
	}
	if confirm != "yes" {
		m.printf("Cancelled.\n")
		return false
	}
	if err := m.svc.DeleteUser(ctx, userID); err != nil {
		m.reportErr(err)
		return false
	}
	m.printf("All your data has been removed.\n")
	return true
}
