package db

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// seedStatements reset the tables and load the demo marketplace: four
// clients, four contractors, nine contracts and fourteen jobs.
var seedStatements = []string{
	`TRUNCATE jobs, contracts, profiles RESTART IDENTITY CASCADE;`,
	`INSERT INTO profiles (id, first_name, last_name, profession, balance, type) VALUES
		(1, 'Harry', 'Potter', 'Wizard', 1150, 'client'),
		(2, 'Mr', 'Robot', 'Hacker', 231.11, 'client'),
		(3, 'John', 'Snow', 'Knows nothing', 451.3, 'client'),
		(4, 'Ash', 'Kethcum', 'Pokemon master', 1.3, 'client'),
		(5, 'John', 'Lenon', 'Musician', 64, 'contractor'),
		(6, 'Linus', 'Torvalds', 'Programmer', 1214, 'contractor'),
		(7, 'Alan', 'Turing', 'Programmer', 22, 'contractor'),
		(8, 'Aragorn', 'II Elessar Telcontarion', 'Fighter', 314, 'contractor');`,
	`INSERT INTO contracts (id, terms, status, client_id, contractor_id) VALUES
		(1, 'bla bla bla', 'terminated', 1, 5),
		(2, 'bla bla bla', 'in_progress', 1, 6),
		(3, 'bla bla bla', 'in_progress', 2, 6),
		(4, 'bla bla bla', 'in_progress', 2, 7),
		(5, 'bla bla bla', 'new', 3, 8),
		(6, 'bla bla bla', 'in_progress', 3, 7),
		(7, 'bla bla bla', 'in_progress', 4, 7),
		(8, 'bla bla bla', 'in_progress', 4, 6),
		(9, 'bla bla bla', 'in_progress', 4, 8);`,
	`INSERT INTO jobs (id, description, price, paid, payment_date, contract_id) VALUES
		(1, 'work', 200, NULL, NULL, 1),
		(2, 'work', 201, NULL, NULL, 2),
		(3, 'work', 202, NULL, NULL, 3),
		(4, 'work', 200, NULL, NULL, 4),
		(5, 'work', 200, NULL, NULL, 7),
		(6, 'work', 2020, TRUE, '2020-08-15T19:11:26.737Z', 7),
		(7, 'work', 200, TRUE, '2020-08-15T19:11:26.737Z', 2),
		(8, 'work', 200, TRUE, '2020-08-16T19:11:26.737Z', 3),
		(9, 'work', 200, TRUE, '2020-08-17T19:11:26.737Z', 1),
		(10, 'work', 200, TRUE, '2020-08-17T19:11:26.737Z', 5),
		(11, 'work', 21, TRUE, '2020-08-10T19:11:26.737Z', 1),
		(12, 'work', 21, TRUE, '2020-08-15T19:11:26.737Z', 2),
		(13, 'work', 121, TRUE, '2020-08-15T19:11:26.737Z', 3),
		(14, 'Programming', 121, TRUE, '2020-08-14T23:11:26.737Z', 3);`,
	`SELECT setval(pg_get_serial_sequence('profiles', 'id'), (SELECT MAX(id) FROM profiles));`,
	`SELECT setval(pg_get_serial_sequence('contracts', 'id'), (SELECT MAX(id) FROM contracts));`,
	`SELECT setval(pg_get_serial_sequence('jobs', 'id'), (SELECT MAX(id) FROM jobs));`,
}

// Seed replaces all rows with the demo data set in a single transaction.
func Seed(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, stmt := range seedStatements {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("seed statement %d failed: %w", i+1, err)
			}
		}
		return nil
	})
}
