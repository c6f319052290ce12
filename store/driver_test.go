package store_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/vegasq/flatsql/store"
	"gotest.tools/v3/assert"
)

func testSuite(t *testing.T, driver store.Driver) {
	fileName := uuid.NewString() + ".csv"
	fileContents := uuid.NewString()

	{ // Confirm the driver is usable
		assert.NilError(t, driver.IsReady(context.Background()))
	}

	{ // Confirm file does not already exist
		found, err := driver.Exists(context.Background(), fileName)
		if err != nil {
			t.Fatal(err)
		}

		if found {
			t.Fatalf("file found before putting the file, bad test: %s", fileName)
		}

		_, err = driver.Get(context.Background(), fileName)
		assert.ErrorIs(t, err, store.ErrNotFound)
	}

	{ // Put the file in storage
		if err := driver.Put(
			context.Background(),
			fileName,
			strings.NewReader(fileContents),
		); err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() {
			_ = driver.Delete(context.Background(), fileName)
		})
	}

	{ // Confirm the file is now in storage
		found, err := driver.Exists(context.Background(), fileName)
		if err != nil {
			t.Fatal(err)
		}

		if !found {
			t.Fatalf("File not found after putting it")
		}
	}

	{ // Confirm the file contents
		reader, err := driver.Get(context.Background(), fileName)
		if err != nil {
			t.Fatal(err)
		}
		actualContents, err := io.ReadAll(reader)
		_ = reader.Close()
		if err != nil {
			t.Fatal(err)
		}
		assert.Equal(t, string(actualContents), fileContents)
	}

	{ // Overwrite the file
		if err := driver.Put(context.Background(), fileName, strings.NewReader("replaced")); err != nil {
			t.Fatal(err)
		}

		reader, err := driver.Get(context.Background(), fileName)
		if err != nil {
			t.Fatal(err)
		}
		actualContents, err := io.ReadAll(reader)
		_ = reader.Close()
		if err != nil {
			t.Fatal(err)
		}
		assert.Equal(t, string(actualContents), "replaced")
	}

	{ // Delete the file
		if err := driver.Delete(context.Background(), fileName); err != nil {
			t.Fatal(err)
		}
	}

	{ // Confirm it no longer exists
		found, err := driver.Exists(context.Background(), fileName)
		if err != nil {
			t.Fatal(err)
		}

		if found {
			t.Fatalf("file found after deleting: %s", fileName)
		}
	}

	{ // Confirm deleting a file that does not exist does not error out
		if err := driver.Delete(context.Background(), fileName); err != nil {
			t.Fatal(err)
		}
	}
}
