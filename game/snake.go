package game

// Snake is an ordered body, head first, with a committed and a pending
// direction.
type Snake struct {
	board   Dimension
	body    []Position
	current Direction
	next    Direction
	out     *outbox
}

func newSnake(board Dimension, out *outbox) *Snake {
	s := &Snake{board: board, out: out}
	s.Respawn()
	return s
}

// Body returns a copy of the snake's cells, head first.
func (s *Snake) Body() []Position {
	return clonePositions(s.body)
}

func (s *Snake) Head() Position {
	return s.body[0]
}

func (s *Snake) Len() int {
	return len(s.body)
}

// Direction returns the last committed direction.
func (s *Snake) Direction() Direction {
	return s.current
}

// PendingDirection returns the direction the next move will take.
func (s *Snake) PendingDirection() Direction {
	return s.next
}

// Respawn places a 3-cell snake in the middle of the board heading right.
func (s *Snake) Respawn() {
	cx, cy := s.board.X/2, s.board.Y/2
	s.body = []Position{
		{X: cx, Y: cy},
		{X: cx - 1, Y: cy},
		{X: cx - 2, Y: cy},
	}
	s.current = Right
	s.next = Right
	s.out.emit(SnakeRespawned{Body: s.Body()})
}

// NextPosition returns where the head would go on the next move.
func (s *Snake) NextPosition() Position {
	return s.body[0].Step(s.next)
}

// ChangeDirection stages d for the next move unless it reverses the committed
// direction. The pending direction is not checked: heading right with up
// pending, left is still rejected but down replaces up.
func (s *Snake) ChangeDirection(d Direction) {
	if d == s.current.Opposite() {
		return
	}
	s.next = d
}

// Move advances the head one cell. The tail is kept when grow is set.
func (s *Snake) Move(grow bool) {
	before := s.Body()
	head := s.NextPosition()

	keep := len(s.body)
	if !grow {
		keep--
	}
	body := make([]Position, 0, keep+1)
	body = append(body, head)
	body = append(body, s.body[:keep]...)
	s.body = body
	s.current = s.next

	s.out.emit(SnakeMoved{Before: before, After: s.Body()})
}

func (s *Snake) occupies(p Position) bool {
	return containsPosition(s.body, p)
}
