package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"hotel_booking/internal/domain"
	"hotel_booking/internal/query"
)

type hotelDoc struct {
	ID         string    `bson:"_id"`
	Name       string    `bson:"name"`
	Address    string    `bson:"address"`
	District   string    `bson:"district"`
	Province   string    `bson:"province"`
	PostalCode string    `bson:"postalcode"`
	Tel        string    `bson:"tel"`
	Region     string    `bson:"region"`
	CreatedAt  time.Time `bson:"createdAt"`
}

func (d hotelDoc) hotel() domain.Hotel {
	return domain.Hotel{
		ID:         d.ID,
		Name:       d.Name,
		Address:    d.Address,
		District:   d.District,
		Province:   d.Province,
		PostalCode: d.PostalCode,
		Tel:        d.Tel,
		Region:     d.Region,
		CreatedAt:  d.CreatedAt.UTC(),
	}
}

type bookingDoc struct {
	ID        string    `bson:"_id"`
	ApptDate  time.Time `bson:"apptDate"`
	UserID    string    `bson:"user"`
	HotelID   string    `bson:"hotel"`
	CreatedAt time.Time `bson:"createdAt"`
}

func (d bookingDoc) booking() domain.Booking {
	return domain.Booking{
		ID:        d.ID,
		ApptDate:  d.ApptDate.UTC(),
		UserID:    d.UserID,
		HotelID:   d.HotelID,
		CreatedAt: d.CreatedAt.UTC(),
	}
}

// bookingViewDoc is a booking after the hotel $lookup.
type bookingViewDoc struct {
	bookingDoc `bson:",inline"`
	Hotel      hotelDoc `bson:"hotelDoc"`
}

func (d bookingViewDoc) view() domain.BookingView {
	b := d.booking()
	return domain.BookingView{
		ID:       b.ID,
		ApptDate: b.ApptDate,
		UserID:   b.UserID,
		Hotel: domain.HotelSummary{
			ID:       d.Hotel.ID,
			Name:     d.Hotel.Name,
			Province: d.Hotel.Province,
			Tel:      d.Hotel.Tel,
		},
		CreatedAt: b.CreatedAt,
	}
}

type userDoc struct {
	ID           string    `bson:"_id"`
	Name         string    `bson:"name"`
	Email        string    `bson:"email"`
	Tel          string    `bson:"tel"`
	Role         string    `bson:"role"`
	PasswordHash string    `bson:"password"`
	CreatedAt    time.Time `bson:"createdAt"`
}

func (d userDoc) user() domain.User {
	return domain.User{
		ID:           d.ID,
		Name:         d.Name,
		Email:        d.Email,
		Tel:          d.Tel,
		Role:         domain.Role(d.Role),
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt.UTC(),
	}
}

// Repo stores hotels, bookings and users in three collections.
type Repo struct {
	db       *mongo.Database
	hotels   *mongo.Collection
	bookings *mongo.Collection
	users    *mongo.Collection
}

var _ domain.Store = (*Repo)(nil)

func New(db *mongo.Database) *Repo {
	return &Repo{
		db:       db,
		hotels:   db.Collection("hotels"),
		bookings: db.Collection("bookings"),
		users:    db.Collection("users"),
	}
}

// EnsureIndexes creates the unique email index and the lookup indexes.
func (r *Repo) EnsureIndexes(ctx context.Context) error {
	if _, err := r.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("users index: %w", err)
	}
	if _, err := r.bookings.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user", Value: 1}}},
		{Keys: bson.D{{Key: "hotel", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("bookings index: %w", err)
	}
	if _, err := r.hotels.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "name", Value: 1}, {Key: "postalcode", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("hotels index: %w", err)
	}
	return nil
}

func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return domain.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return errors.Join(domain.ErrConflict, err)
	}
	return err
}

// inTx runs fn in a multi-document transaction. The driver retries fn on
// transient transaction errors such as write conflicts.
func (r *Repo) inTx(ctx context.Context, fn func(sc mongo.SessionContext) (any, error)) (any, error) {
	sess, err := r.db.Client().StartSession()
	if err != nil {
		return nil, err
	}
	defer sess.EndSession(ctx)
	return sess.WithTransaction(ctx, fn)
}

// touch bumps a counter on the document so that two transactions touching
// it conflict instead of both committing. Reports ErrNotFound when missing.
func touch(ctx context.Context, col *mongo.Collection, id string) error {
	res, err := col.UpdateOne(ctx, bson.D{{Key: "_id", Value: id}}, bson.D{{Key: "$inc", Value: bson.D{{Key: "txSeq", Value: 1}}}})
	if err != nil {
		return mapError(err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// -----------------------------------------------------------------------------
// HOTELS
// -----------------------------------------------------------------------------

func (r *Repo) ListHotels(ctx context.Context, q domain.HotelQuery) ([]domain.Hotel, error) {
	filter, err := renderFilter(q.Filter)
	if err != nil {
		return nil, err
	}
	opts := options.Find().
		SetSort(renderSort(q.Sort)).
		SetSkip(int64(q.Offset)).
		SetLimit(int64(q.Limit))
	if proj := renderProjection(q.Fields); proj != nil {
		opts.SetProjection(proj)
	}
	cur, err := r.hotels.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []hotelDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]domain.Hotel, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.hotel())
	}
	return out, nil
}

func (r *Repo) CountHotels(ctx context.Context, f query.Filter) (int64, error) {
	filter, err := renderFilter(f)
	if err != nil {
		return 0, err
	}
	return r.hotels.CountDocuments(ctx, filter)
}

func (r *Repo) GetHotel(ctx context.Context, id string) (domain.Hotel, error) {
	var d hotelDoc
	if err := r.hotels.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&d); err != nil {
		return domain.Hotel{}, mapError(err)
	}
	return d.hotel(), nil
}

func (r *Repo) CreateHotel(ctx context.Context, h domain.Hotel) error {
	_, err := r.hotels.InsertOne(ctx, hotelDoc{
		ID:         h.ID,
		Name:       h.Name,
		Address:    h.Address,
		District:   h.District,
		Province:   h.Province,
		PostalCode: h.PostalCode,
		Tel:        h.Tel,
		Region:     h.Region,
		CreatedAt:  h.CreatedAt,
	})
	return mapError(err)
}

func (r *Repo) UpdateHotel(ctx context.Context, h domain.Hotel) error {
	set := bson.D{
		{Key: "name", Value: h.Name},
		{Key: "address", Value: h.Address},
		{Key: "district", Value: h.District},
		{Key: "province", Value: h.Province},
		{Key: "postalcode", Value: h.PostalCode},
		{Key: "tel", Value: h.Tel},
		{Key: "region", Value: h.Region},
	}
	res, err := r.hotels.UpdateOne(ctx, bson.D{{Key: "_id", Value: h.ID}}, bson.D{{Key: "$set", Value: set}})
	if err != nil {
		return mapError(err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repo) DeleteHotel(ctx context.Context, id string) (int64, error) {
	out, err := r.inTx(ctx, func(sc mongo.SessionContext) (any, error) {
		res, err := r.hotels.DeleteOne(sc, bson.D{{Key: "_id", Value: id}})
		if err != nil {
			return nil, mapError(err)
		}
		if res.DeletedCount == 0 {
			return nil, domain.ErrNotFound
		}
		bres, err := r.bookings.DeleteMany(sc, bson.D{{Key: "hotel", Value: id}})
		if err != nil {
			return nil, mapError(err)
		}
		return bres.DeletedCount, nil
	})
	if err != nil {
		return 0, err
	}
	return out.(int64), nil
}

// -----------------------------------------------------------------------------
// BOOKINGS
// -----------------------------------------------------------------------------

func bookingViewPipeline(match bson.D) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "hotels"},
			{Key: "localField", Value: "hotel"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "hotelDoc"},
		}}},
		{{Key: "$unwind", Value: "$hotelDoc"}},
	}
}

func (r *Repo) aggregateViews(ctx context.Context, match bson.D) ([]domain.BookingView, error) {
	cur, err := r.bookings.Aggregate(ctx, bookingViewPipeline(match))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []bookingViewDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]domain.BookingView, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.view())
	}
	return out, nil
}

func (r *Repo) ListBookings(ctx context.Context, f domain.BookingFilter) ([]domain.BookingView, error) {
	match := bson.D{}
	if f.UserID != "" {
		match = append(match, bson.E{Key: "user", Value: f.UserID})
	}
	if f.HotelID != "" {
		match = append(match, bson.E{Key: "hotel", Value: f.HotelID})
	}
	return r.aggregateViews(ctx, match)
}

func (r *Repo) ListBookingsForHotels(ctx context.Context, hotelIDs []string) ([]domain.Booking, error) {
	if len(hotelIDs) == 0 {
		return nil, nil
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.bookings.Find(ctx, bson.D{{Key: "hotel", Value: bson.D{{Key: "$in", Value: hotelIDs}}}}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []bookingDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]domain.Booking, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.booking())
	}
	return out, nil
}

func (r *Repo) GetBooking(ctx context.Context, id string) (domain.BookingView, error) {
	views, err := r.aggregateViews(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return domain.BookingView{}, err
	}
	if len(views) == 0 {
		return domain.BookingView{}, domain.ErrNotFound
	}
	return views[0], nil
}

func (r *Repo) CreateBooking(ctx context.Context, b domain.Booking, quota int) error {
	_, err := r.inTx(ctx, func(sc mongo.SessionContext) (any, error) {
		if err := touch(sc, r.hotels, b.HotelID); err != nil {
			return nil, fmt.Errorf("hotel %s: %w", b.HotelID, err)
		}
		if err := touch(sc, r.users, b.UserID); err != nil {
			return nil, fmt.Errorf("user %s: %w", b.UserID, err)
		}
		if quota > 0 {
			n, err := r.bookings.CountDocuments(sc, bson.D{{Key: "user", Value: b.UserID}})
			if err != nil {
				return nil, err
			}
			if n >= int64(quota) {
				return nil, fmt.Errorf("user %s already has %d bookings: %w", b.UserID, n, domain.ErrQuotaExceeded)
			}
		}
		_, err := r.bookings.InsertOne(sc, bookingDoc{
			ID:        b.ID,
			ApptDate:  b.ApptDate,
			UserID:    b.UserID,
			HotelID:   b.HotelID,
			CreatedAt: b.CreatedAt,
		})
		return nil, mapError(err)
	})
	return err
}

func (r *Repo) UpdateBooking(ctx context.Context, b domain.Booking) error {
	_, err := r.inTx(ctx, func(sc mongo.SessionContext) (any, error) {
		if err := touch(sc, r.hotels, b.HotelID); err != nil {
			return nil, fmt.Errorf("hotel %s: %w", b.HotelID, err)
		}
		res, err := r.bookings.UpdateOne(sc,
			bson.D{{Key: "_id", Value: b.ID}},
			bson.D{{Key: "$set", Value: bson.D{
				{Key: "apptDate", Value: b.ApptDate},
				{Key: "hotel", Value: b.HotelID},
			}}},
		)
		if err != nil {
			return nil, mapError(err)
		}
		if res.MatchedCount == 0 {
			return nil, domain.ErrNotFound
		}
		return nil, nil
	})
	return err
}

func (r *Repo) DeleteBooking(ctx context.Context, id string) error {
	res, err := r.bookings.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return mapError(err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// -----------------------------------------------------------------------------
// USERS
// -----------------------------------------------------------------------------

func (r *Repo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.users.InsertOne(ctx, userDoc{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Tel:          u.Tel,
		Role:         string(u.Role),
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
	})
	return mapError(err)
}

func (r *Repo) GetUser(ctx context.Context, id string) (domain.User, error) {
	return r.findUser(ctx, bson.D{{Key: "_id", Value: id}})
}

func (r *Repo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.findUser(ctx, bson.D{{Key: "email", Value: email}})
}

func (r *Repo) findUser(ctx context.Context, filter bson.D) (domain.User, error) {
	var d userDoc
	if err := r.users.FindOne(ctx, filter).Decode(&d); err != nil {
		return domain.User{}, mapError(err)
	}
	return d.user(), nil
}
