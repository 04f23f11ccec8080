package hardcover

// GraphQL documents for the Hardcover schema. The shapes are an
// implementation detail of this client; callers only see the mapped types.

const queryTestConnection = `
query TestConnection {
    me {
        id
        username
        email
    }
}`

const querySearchByTitle = `
query SearchBooksByTitle($title: String!) {
    books(where: {title: {_ilike: $title}}, limit: 10) {
        id
        title
        slug
        release_date
        contributions {
            author {
                id
                name
            }
        }
        editions {
            id
            isbn_10
            isbn_13
            title
            edition_format
        }
    }
}`

const querySearchByISBN = `
query SearchBooksByISBN($isbn10: String, $isbn13: String) {
    editions(where: {
        _or: [
            {isbn_10: {_eq: $isbn10}},
            {isbn_13: {_eq: $isbn13}}
        ]
    }, limit: 5) {
        id
        isbn_10
        isbn_13
        title
        book {
            id
            title
            slug
            contributions {
                author {
                    id
                    name
                }
            }
        }
    }
}`

const queryOwnedBooks = `
query GetOwnedBooksWithTitles {
    user_books(where: {owned: {_eq: true}}) {
        book_id
        book {
            id
            title
            slug
            contributions {
                author {
                    name
                }
            }
            editions {
                isbn_10
                isbn_13
            }
        }
    }
}`

const mutationMarkOwned = `
mutation AddBookToOwned($book_id: bigint!) {
    insert_user_books_one(object: {
        book_id: $book_id,
        owned: true
    }, on_conflict: {
        constraint: user_books_pkey,
        update_columns: [owned]
    }) {
        id
        book_id
        owned
    }
}`

const mutationCreateBook = `
mutation CreateBook($title: String!, $subtitle: String, $description: String,
                    $release_date: date, $isbn_10: String, $isbn_13: String,
                    $publisher: String, $pages: Int) {
    insert_books_one(object: {
        title: $title,
        subtitle: $subtitle,
        description: $description,
        release_date: $release_date,
        publisher: $publisher,
        pages: $pages,
        editions: {
            data: [{
                title: $title,
                isbn_10: $isbn_10,
                isbn_13: $isbn_13,
                pages: $pages,
                publisher: $publisher
            }]
        }
    }) {
        id
        title
    }
}`
